// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/exitwithstatus"

	"github.com/krisys/krisys/station"
)

// setup command handler
//
// commands that run to create certificate files, these cannot access
// the database or the configuration file
func processSetupCommand(program string, arguments []string) bool {
	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-cert", "cert":
		certificateFilename := getFilenameWithDirectory(arguments, defaultCertificateFile)
		privateKeyFilename := getFilenameWithDirectory(arguments, defaultKeyFile)

		addresses := []string{}
		if len(arguments) >= 2 {
			for _, a := range arguments[1:] {
				if "" != a {
					addresses = append(addresses, a)
				}
			}
		}

		err := station.MakeSelfSignedCertificate("station", certificateFilename, privateKeyFilename, 0 != len(addresses), addresses)
		if nil != err {
			fmt.Printf("generate key: %q and certificate: %q error: %s\n", privateKeyFilename, certificateFilename, err)
			exitwithstatus.Exit(1)
		}
		_, fingerprint, err := station.LoadCertificate(certificateFilename, privateKeyFilename)
		if nil != err {
			fmt.Printf("reload certificate: %q error: %s\n", certificateFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated key: %q and certificate: %q\n", privateKeyFilename, certificateFilename)
		fmt.Printf("SHA3-256 fingerprint: %s\n", fingerprint)

	case "start", "run":
		return false // continue processing

	case "config-test", "cfg":
		return false

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version sting\n\n")

		fmt.Printf("  gen-cert [DIR] [IPs...]    (cert)   - create private key in:  %q\n", "DIR/"+defaultKeyFile)
		fmt.Printf("                                        and the certificate in: %q\n", "DIR/"+defaultCertificateFile)
		fmt.Printf("\n")

		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convienience when passing script arguments\n\n")
		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and preform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {
	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		b, err := json.Marshal(options)
		if err != nil {
			exitwithstatus.Message("error: %s", err)
		}
		var out bytes.Buffer
		_ = json.Indent(&out, b, "", "  ")
		_, _ = out.WriteTo(os.Stdout)
		os.Stdout.WriteString("\n")

	default:
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// first argument, when present, is the directory for the file
func getFilenameWithDirectory(arguments []string, name string) string {
	directory := "."
	if len(arguments) >= 1 && "" != arguments[0] {
		directory = arguments[0]
	}
	return filepath.Join(directory, name)
}
