// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"

	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/util"
)

// FileWatcher - notifies when a single file changes or disappears
type FileWatcher interface {
	Start() error
	Stop()
}

// WatcherChannel - event channels, sends never block
type WatcherChannel struct {
	change chan struct{}
	remove chan struct{}
}

// FileWatcherData - fsnotify backed FileWatcher
type FileWatcherData struct {
	log      *logger.L
	channel  WatcherChannel
	watcher  *fsnotify.Watcher
	filePath string
	done     chan struct{}
}

func newFileWatcher(targetFile string, log *logger.L, channel WatcherChannel) (*FileWatcherData, error) {
	filePath, err := filepath.Abs(filepath.Clean(targetFile))
	if nil != err {
		return nil, err
	}
	if !util.EnsureFileExists(filePath) {
		return nil, fault.ErrNotFound
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}

	return &FileWatcherData{
		log:      log,
		channel:  channel,
		watcher:  watcher,
		filePath: filePath,
		done:     make(chan struct{}),
	}, nil
}

// Start - watch the containing directory so editors that replace the
// file by rename are still seen
func (w *FileWatcherData) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.filePath)); nil != err {
		w.log.Errorf("watcher add error: %s", err)
		return err
	}

	go func() {
		for {
			select {
			case <-w.done:
				return

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.filePath {
					continue
				}
				w.log.Debugf("file event: %v", event)

				if watcherEventFileRemove(event) {
					w.log.Warnf("file: %s removed", w.filePath)
					w.sendEvent(w.channel.remove, "remove")
					continue
				}
				if watcherEventFileChange(event) {
					w.sendEvent(w.channel.change, "change")
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.log.Errorf("watcher error: %s", err)
			}
		}
	}()
	return nil
}

// Stop - release the watcher
func (w *FileWatcherData) Stop() {
	close(w.done)
	_ = w.watcher.Close()
}

func isChannelFull(ch chan<- struct{}) bool {
	return len(ch) == cap(ch)
}

func (w *FileWatcherData) sendEvent(ch chan<- struct{}, name string) {
	if !isChannelFull(ch) {
		ch <- struct{}{}
	} else {
		w.log.Debugf("event channel %s full, discard event", name)
	}
}

func watcherEventFileRemove(event fsnotify.Event) bool {
	return event.Op&fsnotify.Remove == fsnotify.Remove ||
		event.Op&fsnotify.Rename == fsnotify.Rename
}

func watcherEventFileChange(event fsnotify.Event) bool {
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create ||
		event.Op&fsnotify.Chmod == fsnotify.Chmod
}

// read an armored public key file
func loadTrustedKey(fileName string) (*blockrecord.TrustedKey, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	return blockrecord.NewTrustedKey(string(data))
}
