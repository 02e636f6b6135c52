// Copyright 2019 The meridian Authors
// This file is part of the meridian library.
//
// The meridian library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The meridian library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the meridian library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/meridian-network/meridian/blockchain"
	"github.com/meridian-network/meridian/blockchain/vm"
	"github.com/meridian-network/meridian/storage"
	"github.com/meridian-network/meridian/storage/database"
)

const versionString = "0.1.0"

var (
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the state database",
		Value: "meridian-data",
	}
	dbTypeFlag = cli.StringFlag{
		Name:  "db",
		Usage: `Backing database implementation ("leveldb", "badgerdb", "memdb")`,
		Value: "leveldb",
	}
	verbosityFlag = cli.StringFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity (debug, info, warn, error)",
		Value: "info",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "meridian"
	app.Usage = "the meridian shard runtime command line interface"
	app.Version = versionString
	app.Flags = []cli.Flag{dataDirFlag, dbTypeFlag, verbosityFlag}
	app.Commands = []cli.Command{
		{
			Name:      "init",
			Usage:     "Install a genesis state from a TOML chain spec",
			ArgsUsage: "<chainspec.toml>",
			Action:    initGenesis,
		},
	}
	app.Before = func(ctx *cli.Context) error {
		level, err := logrus.ParseLevel(ctx.GlobalString(verbosityFlag.Name))
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDatabase(ctx *cli.Context) (database.Database, error) {
	dir := filepath.Join(ctx.GlobalString(dataDirFlag.Name), "state")
	switch ctx.GlobalString(dbTypeFlag.Name) {
	case "leveldb":
		return database.NewDatabase(database.LevelDB, dir)
	case "badgerdb":
		return database.NewDatabase(database.BadgerDB, dir)
	case "memdb":
		return database.NewDatabase(database.MemoryDB, dir)
	default:
		return nil, fmt.Errorf("unknown db type %q", ctx.GlobalString(dbTypeFlag.Name))
	}
}

func initGenesis(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("init expects exactly one chain spec path")
	}
	spec, err := loadChainSpec(ctx.Args().First())
	if err != nil {
		return err
	}
	var wasmBinary []byte
	if spec.WasmPath != "" {
		wasmBinary, err = os.ReadFile(spec.WasmPath)
		if err != nil {
			return err
		}
	}

	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	stateDB, err := storage.NewStateDB(db)
	if err != nil {
		return err
	}
	runtime := blockchain.NewRuntime(stateDB, vm.NewWASMExecutor())
	root, err := runtime.ApplyGenesisState(spec.genesisAccounts(), wasmBinary, spec.genesisAuthorities())
	if err != nil {
		return err
	}
	fmt.Printf("genesis root: %s\n", root.Hex())
	return nil
}
