// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/krisys/krisys/authority"
	"github.com/krisys/krisys/engine"
	"github.com/krisys/krisys/storage"
	"github.com/krisys/krisys/util"
)

const (
	defaultDatabase = "krisys.leveldb"
	logFile         = "krisys-cli.log"
	logSize         = 1024 * 1024
	logCount        = 10
)

type metadata struct {
	db      *storage.LevelDB
	device  *engine.Engine
	verbose bool
	e       io.Writer
	w       io.Writer
}

// commands that never open the database
var offlineCommands = map[string]struct{}{
	"":             {},
	"help":         {},
	"h":            {},
	"version":      {},
	"generate-key": {},
	"sign-block":   {},
	"verify-block": {},
	"decrypt":      {},
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// logging survives repeated app runs in one process
var startLogging sync.Once

func main() {
	app := newApp(os.Stdout, os.Stderr)
	defer logger.Finalise()

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		logger.Finalise()
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "krisys-cli"
	app.Usage = "inspect and operate a krisys device store"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "data, d",
			Value: ".",
			Usage: " data `DIRECTORY` holding the database",
		},
		cli.StringFlag{
			Name:  "database",
			Value: defaultDatabase,
			Usage: " LevelDB `NAME` within the data directory",
		},
		cli.StringFlag{
			Name:  "authority, a",
			Value: "",
			Usage: " crisis authority `URL`, blank for offline use",
		},
		cli.StringFlag{
			Name:  "crisis, c",
			Value: "",
			Usage: " crisis `ID` for a new store",
		},
		cli.StringFlag{
			Name:  "device",
			Value: "",
			Usage: " device `ID` for a new store",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:   "version",
			Usage:  "display version",
			Action: runVersion,
		},
		{
			Name:   "status",
			Usage:  "summary of the device store",
			Action: runStatus,
		},
		{
			Name:  "chain",
			Usage: "list cached blocks",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "count, n",
					Value: 0,
					Usage: " only the last `COUNT` blocks, 0 for all",
				},
				cli.BoolFlag{
					Name:  "headers",
					Usage: " print only the signed headers",
				},
			},
			Action: runChain,
		},
		{
			Name:   "queue",
			Usage:  "list the outbound message queue",
			Action: runQueue,
		},
		{
			Name:   "confirmations",
			Usage:  "list the relay confirmation ledger",
			Action: runConfirmations,
		},
		{
			Name:  "transactions",
			Usage: "wallet view for one or more addresses",
			Flags: []cli.Flag{
				cli.StringSliceFlag{
					Name:  "address, A",
					Usage: "*wallet `ADDRESS`, may be repeated",
				},
			},
			Action: runTransactions,
		},
		{
			Name:  "export",
			Usage: "write a sync payload",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "output, o",
					Value: "",
					Usage: " payload `FILE`, default stdout",
				},
			},
			Action: runExport,
		},
		{
			Name:  "import",
			Usage: "merge a sync payload from a peer",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: "*payload `FILE`, - for stdin",
				},
			},
			Action: runImport,
		},
		{
			Name:  "send",
			Usage: "submit a message, queued when the authority is unreachable",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "from, f",
					Value: "",
					Usage: "*sending station `ADDRESS`",
				},
				cli.StringSliceFlag{
					Name:  "to, t",
					Usage: " related `ADDRESS`, may be repeated",
				},
				cli.StringFlag{
					Name:  "message, m",
					Value: "",
					Usage: "*message `TEXT`",
				},
				cli.StringFlag{
					Name:  "recipient-key, k",
					Value: "",
					Usage: " encrypt to the armored public key in `FILE`",
				},
				cli.IntFlag{
					Name:  "priority, p",
					Value: 0,
					Usage: " priority `LEVEL` 1..5",
				},
			},
			Action: runSend,
		},
		{
			Name:   "refresh",
			Usage:  "fetch crisis metadata and canonical blocks from the authority",
			Action: runRefresh,
		},
		{
			Name:  "flush",
			Usage: "submit queued messages to the authority",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "station, s",
					Usage: " continue past failures as a station does",
				},
			},
			Action: runFlush,
		},
		{
			Name:   "reset",
			Usage:  "clear chain, queue and confirmations",
			Action: runReset,
		},
		{
			Name:  "generate-key",
			Usage: "create an OpenPGP key pair",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "name, n",
					Value: "",
					Usage: "*identity `NAME`",
				},
				cli.StringFlag{
					Name:  "email, e",
					Value: "",
					Usage: " identity `EMAIL`",
				},
				cli.IntFlag{
					Name:  "bits, b",
					Value: 0,
					Usage: " RSA key `BITS`",
				},
				cli.StringFlag{
					Name:  "output, o",
					Value: "",
					Usage: "*write `PREFIX`.pub and `PREFIX`.key",
				},
			},
			Action: runGenerateKey,
		},
		{
			Name:  "sign-block",
			Usage: "issue a signed block from a list of transactions",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "key, k",
					Value: "",
					Usage: "*armored private key `FILE`",
				},
				cli.StringFlag{
					Name:  "passphrase, p",
					Value: "",
					Usage: " private key `PASSPHRASE`",
				},
				cli.StringFlag{
					Name:  "transactions, t",
					Value: "",
					Usage: " JSON transaction list `FILE`, default empty",
				},
				cli.Uint64Flag{
					Name:  "index, i",
					Value: 0,
					Usage: " block `INDEX`",
				},
				cli.StringFlag{
					Name:  "previous, P",
					Value: "",
					Usage: " previous block `HASH`, default genesis",
				},
			},
			Action: runSignBlock,
		},
		{
			Name:  "verify-block",
			Usage: "check block signatures against a public key",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "key, k",
					Value: "",
					Usage: "*armored public key `FILE`",
				},
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: "*JSON block or block list `FILE`",
				},
			},
			Action: runVerifyBlock,
		},
		{
			Name:  "decrypt",
			Usage: "decrypt an armored message",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "key, k",
					Value: "",
					Usage: "*armored private key `FILE`",
				},
				cli.StringFlag{
					Name:  "passphrase, p",
					Value: "",
					Usage: " private key `PASSPHRASE`",
				},
				cli.StringFlag{
					Name:  "message, m",
					Value: "",
					Usage: "*armored message `FILE`",
				},
			},
			Action: runDecrypt,
		},
	}

	app.Before = func(c *cli.Context) error {
		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		m := &metadata{
			verbose: verbose,
			e:       e,
			w:       w,
		}
		c.App.Metadata["config"] = m

		command := c.Args().Get(0)
		if _, ok := offlineCommands[command]; ok {
			return nil
		}

		dataDirectory, err := filepath.Abs(c.GlobalString("data"))
		if nil != err {
			return err
		}
		if err := startLogger(dataDirectory); nil != err {
			return err
		}

		name := util.EnsureAbsolute(dataDirectory, c.GlobalString("database"))
		if verbose {
			fmt.Fprintf(e, "database: %q\n", name)
		}
		m.db, err = storage.OpenLevelDB(name, false)
		if nil != err {
			return err
		}

		configuration := &engine.Configuration{
			Handle:   m.db,
			CrisisID: c.GlobalString("crisis"),
			DeviceID: c.GlobalString("device"),
		}
		if u := c.GlobalString("authority"); "" != u {
			client, err := authority.NewClient(&authority.Configuration{URL: u})
			if nil != err {
				return err
			}
			configuration.Authority = client
		}

		m.device, err = engine.New(configuration)
		return err
	}

	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok || nil == m.db {
			return nil
		}
		if m.verbose {
			fmt.Fprintf(m.e, "closing database\n")
		}
		err := m.db.Close()
		m.db = nil
		return err
	}

	return app
}

// log to the data directory, only errors are recorded
func startLogger(dataDirectory string) error {
	var err error
	startLogging.Do(func() {
		directory := ""
		directory, err = util.EnsureDirectory(dataDirectory, "log")
		if nil != err {
			return
		}
		err = logger.Initialise(logger.Configuration{
			Directory: directory,
			File:      logFile,
			Size:      logSize,
			Count:     logCount,
			Levels: map[string]string{
				logger.DefaultTag: "error",
			},
		})
	})
	return err
}

func runVersion(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "%s\n", version)
	return nil
}
