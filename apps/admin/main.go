package main

import (
	"log"
	"os"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/attendance"
	"github.com/wingscc/rollcall/core/student"
	"github.com/wingscc/rollcall/core/user"
	"github.com/wingscc/rollcall/storage/database"
	boiledrepos "github.com/wingscc/rollcall/storage/database/sqlboiler"
	sqlxrepos "github.com/wingscc/rollcall/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.Conf

	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(db))
	cli := commandLine{
		db:         db.DB,
		usrSvc:     user.NewService(sqlxrepos.NewUserRepository(db)),
		studentSvc: studentSvc,
		attendanceSvc: attendance.NewService(
			sqlxrepos.NewAttendanceRepository(db, boiledrepos.NewStatsRepository(db)),
			studentSvc,
			attendance.Options{CenterName: conf.CenterName},
		),
		in:  os.Stdin,
		out: os.Stdout,
	}

	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
