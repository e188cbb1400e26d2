package main

import (
	"bufio"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/wingscc/rollcall/core/attendance"
	"github.com/wingscc/rollcall/core/student"
	"github.com/wingscc/rollcall/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp     = errors.New("help provided")
	errAborted  = errors.New("aborted")
	resetPhrase = "RESET"
	clearPhrase = "yes"
)

type commandLine struct {
	db            *sql.DB
	usrSvc        *user.Service
	studentSvc    *student.Service
	attendanceSvc *attendance.Service
	in            io.Reader
	out           io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]     - run a database migration command (up, down, status, redo...)")
	_, _ = fmt.Fprintln(cli.out, "  adduser -username USERNAME - create the admin account or update its password")
	_, _ = fmt.Fprintln(cli.out, "  resetpassword -username USERNAME - reset the admin password")
	_, _ = fmt.Fprintln(cli.out, "  assignrolls -batch BATCH   - number the batch 1..N in roster order")
	_, _ = fmt.Fprintln(cli.out, "  clearattendance            - delete every attendance record")
	_, _ = fmt.Fprintln(cli.out, "  reset                      - delete every student and attendance record")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserUname := addUserCmd.String("username", "", "The admin username. The password will be prompted next.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The admin username. The password will be prompted next.")

	assignRollsCmd := flag.NewFlagSet("assignrolls", flag.ContinueOnError)
	assignRollsBatch := assignRollsCmd.String("batch", "", "The batch to number: "+strings.Join(student.Batches, ", "))

	for _, fs := range []*flag.FlagSet{addUserCmd, resetPasswordCmd, assignRollsCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		pwd, err := cli.parseUserCmd(addUserCmd, addUserUname, args[2:])
		if err != nil {
			return err
		}
		return cli.addUser(*addUserUname, pwd)
	case "resetpassword":
		pwd, err := cli.parseUserCmd(resetPasswordCmd, resetPasswordUname, args[2:])
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "assignrolls":
		if err := assignRollsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *assignRollsBatch == "" {
			assignRollsCmd.Usage()
			return errHelp
		}
		return cli.assignRolls(*assignRollsBatch)
	case "clearattendance":
		if err := cli.confirm("This deletes every attendance record.", clearPhrase); err != nil {
			return err
		}
		return cli.clearAttendance()
	case "reset":
		if err := cli.confirm("This deletes every student and attendance record.", resetPhrase); err != nil {
			return err
		}
		return cli.reset()
	default:
		cli.printUsage()
		return errHelp
	}
}

// parseUserCmd parses the -username flag then prompts for the password.
func (cli *commandLine) parseUserCmd(fs *flag.FlagSet, uname *string, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", errHelp
	}
	if *uname == "" {
		fs.Usage()
		return "", errHelp
	}
	_, _ = fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

// confirm asks the operator to type phrase before a destructive command.
func (cli *commandLine) confirm(warning, phrase string) error {
	_, _ = fmt.Fprintf(cli.out, "%s Type %q to confirm: ", warning, phrase)
	answer, err := bufio.NewReader(cli.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	if strings.TrimSpace(answer) != phrase {
		return errAborted
	}
	return nil
}
