/*
Copyright 2024 Daftar Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/polica/daftar"
	"github.com/polica/daftar/config"
	"github.com/polica/daftar/database"
	"github.com/polica/daftar/internal/notification"
)

// CLI is the root cobra command for the daftar binary.
type CLI struct {
	cmd *cobra.Command
}

// daftarInstance carries the initialized service and configuration into the
// subcommands.
type daftarInstance struct {
	daftar *daftar.Daftar
	cnf    *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

func preRun(app *daftarInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("daftar.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newDaftar, err := setupDaftar(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.daftar = newDaftar
		app.cnf = cnf

		return nil
	}
}

func setupDaftar(cfg *config.Configuration) (*daftar.Daftar, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newDaftar, err := daftar.NewDaftar(db)
	if err != nil {
		return nil, fmt.Errorf("error creating daftar: %v", err)
	}
	return newDaftar, nil
}

func NewCLI() *CLI {
	var configFile string
	d := &daftarInstance{}

	var rootCmd = &cobra.Command{
		Use:   "daftar",
		Short: "Tutoring center ledger and admin backend",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./daftar.json", "Configuration file for daftar")

	rootCmd.PersistentPreRunE = preRun(d)

	rootCmd.AddCommand(serverCommands(d))
	rootCmd.AddCommand(workerCommands(d))
	rootCmd.AddCommand(migrateCommands(d))
	rootCmd.AddCommand(backupCommands(d))

	return &CLI{cmd: rootCmd}
}

func (c CLI) executeCLI() {
	if err := c.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
