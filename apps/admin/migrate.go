package main

import (
	"github.com/trezcool/darasa/storage/database"
)

var migrationRunFunc = database.RunMigration // mockable

func (cli *commandLine) migrate(args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}
	return migrationRunFunc(cli.db, command, args...)
}

func (cli *commandLine) createDB() error {
	return database.CreateIfNotExist(cli.conf)
}
