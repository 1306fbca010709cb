// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/krisys/krisys/authority"
	"github.com/krisys/krisys/background"
	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/engine"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/mode"
	"github.com/krisys/krisys/station"
	"github.com/krisys/krisys/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

const shutdownTimeout = 10 * time.Second

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// last chance logging for start up failures
	err = fault.Initialise()
	if nil != err {
		exitwithstatus.Message("%s: fault initialise failed with error: %s", program, err)
	}
	defer fault.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	fault.PanicIfError("mode initialise", mode.Initialise())
	defer mode.Finalise()

	log.Infof("database: %q", theConfiguration.Database.Name)
	db, err := storage.OpenLevelDB(theConfiguration.Database.Name, false)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer db.Close()

	var source authority.Authority
	authorityURL := ""
	if "" != theConfiguration.Authority.URL {
		client, err := authority.NewClient(&theConfiguration.Authority)
		if nil != err {
			log.Criticalf("authority: %q  error: %s", theConfiguration.Authority.URL, err)
			exitwithstatus.Message("authority: %q  error: %s", theConfiguration.Authority.URL, err)
		}
		source = client
		authorityURL = client.URL()
		log.Infof("authority: %s", authorityURL)
	} else {
		log.Warn("no authority configured: relay only")
	}

	var key *blockrecord.TrustedKey
	if "" != theConfiguration.TrustedKeyFile {
		data, err := ioutil.ReadFile(theConfiguration.TrustedKeyFile)
		if nil == err {
			key, err = blockrecord.NewTrustedKey(string(data))
		}
		if nil != err {
			log.Criticalf("trusted key: %q  error: %s", theConfiguration.TrustedKeyFile, err)
			exitwithstatus.Message("trusted key: %q  error: %s", theConfiguration.TrustedKeyFile, err)
		}
		log.Infof("trusted key: %s", key.Fingerprint())
	}

	relay, err := engine.New(&engine.Configuration{
		Handle:    db,
		Authority: source,
		Key:       key,
		DeviceID:  theConfiguration.StationID,
		CrisisID:  theConfiguration.CrisisID,
	})
	if nil != err {
		log.Criticalf("engine initialise error: %s", err)
		exitwithstatus.Message("engine initialise error: %s", err)
	}

	server, err := station.New(&theConfiguration.HTTP, relay, authorityURL)
	if nil != err {
		log.Criticalf("station initialise error: %s", err)
		exitwithstatus.Message("station initialise error: %s", err)
	}
	if err := server.Start(); nil != err {
		log.Criticalf("station start error: %s", err)
		exitwithstatus.Message("station start error: %s", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		server.Stop(ctx)
	}()

	if nil != source {
		processes := background.Processes{
			engine.NewRefresher(relay, time.Duration(theConfiguration.RefreshInterval)*time.Second),
		}
		if 0 != theConfiguration.FlushInterval {
			processes = append(processes, engine.NewFlusher(relay, time.Duration(theConfiguration.FlushInterval)*time.Second, true))
		}
		p := background.Start(processes, nil)
		defer p.Stop()
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
	mode.Set(mode.Stopped)
}
