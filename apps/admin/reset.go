package main

import (
	"context"
	"fmt"
	"strings"
)

func (cli *commandLine) assignRolls(batch string) error {
	students, err := cli.studentSvc.AssignRollNumbers(context.Background(), strings.ToUpper(batch))
	if err != nil {
		return err
	}
	for _, s := range students {
		_, _ = fmt.Fprintf(cli.out, "%4s  %s\n", s.RollNumber.String, s.Name)
	}
	return nil
}

func (cli *commandLine) clearAttendance() error {
	if err := cli.attendanceSvc.ClearAll(context.Background()); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, "attendance cleared")
	return nil
}

func (cli *commandLine) reset() error {
	ctx := context.Background()
	if err := cli.attendanceSvc.ClearAll(ctx); err != nil {
		return err
	}
	if err := cli.studentSvc.DeleteAll(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, "all students and attendance deleted")
	return nil
}
