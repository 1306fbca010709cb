// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/krisys/krisys/fault"
)

// access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// LevelDB - a Handle backed by a leveldb directory
type LevelDB struct {
	sync.RWMutex
	log      *logger.L
	db       *leveldb.DB
	cache    *readCache
	readOnly bool
}

// OpenLevelDB - open (creating if necessary) the database directory
func OpenLevelDB(name string, readOnly bool) (*LevelDB, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, err
	}

	version, err := getVersion(db)
	if nil != err {
		db.Close()
		return nil, err
	}

	// ensure no database downgrade
	if version > currentStoreVersion {
		db.Close()
		return nil, fmt.Errorf("database version: %d > current version: %d", version, currentStoreVersion)
	}

	if 0 == version && !readOnly {
		err = putVersion(db, currentStoreVersion)
		if nil != err {
			db.Close()
			return nil, err
		}
	}

	l := &LevelDB{
		log:      logger.New("storage"),
		db:       db,
		cache:    newReadCache(),
		readOnly: readOnly,
	}
	l.log.Infof("opened: %q  version: %d  read only: %t", name, version, readOnly)
	return l, nil
}

// Get - fetch a value, nil if absent
func (l *LevelDB) Get(key string) []byte {
	if value, hit := l.cache.lookup(key); hit {
		return value
	}

	l.RLock()
	defer l.RUnlock()

	if nil == l.db {
		return nil
	}

	value, err := l.db.Get([]byte(key), nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	if nil != err {
		l.log.Errorf("get: %q  error: %s", key, err)
		return nil
	}
	l.cache.remember(key, value)
	return value
}

// Put - store a value
func (l *LevelDB) Put(key string, value []byte) error {
	if l.readOnly {
		return fault.ErrStorageReadOnly
	}

	l.Lock()
	defer l.Unlock()

	if nil == l.db {
		return fault.ErrNotInitialised
	}

	err := l.db.Put([]byte(key), value, nil)
	if nil != err {
		l.log.Errorf("put: %q  error: %s", key, err)
		return err
	}
	l.cache.remember(key, value)
	return nil
}

// Delete - remove a key, absent keys are not an error
func (l *LevelDB) Delete(key string) error {
	if l.readOnly {
		return fault.ErrStorageReadOnly
	}

	l.Lock()
	defer l.Unlock()

	if nil == l.db {
		return fault.ErrNotInitialised
	}

	err := l.db.Delete([]byte(key), nil)
	if nil != err {
		l.log.Errorf("delete: %q  error: %s", key, err)
		return err
	}
	l.cache.forget(key)
	return nil
}

// Close - close the database
func (l *LevelDB) Close() error {
	l.Lock()
	defer l.Unlock()

	if nil == l.db {
		return nil
	}
	l.cache.reset()
	err := l.db.Close()
	l.db = nil
	return err
}

func getVersion(db *leveldb.DB) (int, error) {
	versionValue, err := db.Get([]byte(StorageVersionKey), nil)
	if leveldb.ErrNotFound == err {
		return 0, nil
	} else if nil != err {
		return 0, err
	}

	if 4 != len(versionValue) {
		return 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	return int(binary.BigEndian.Uint32(versionValue)), nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put([]byte(StorageVersionKey), currentVersion, nil)
}
