package main

import (
	"context"
	"fmt"
)

// addUser creates the admin account, or updates its password when it exists.
func (cli *commandLine) addUser(uname, pwd string) error {
	usr, err := cli.usrSvc.Save(context.Background(), uname, pwd)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "user %q saved\n", usr.Username)
	return nil
}
