// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"context"
	"time"

	"github.com/krisys/krisys/confirmation"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/mode"
	"github.com/krisys/krisys/synchronise"
	"github.com/krisys/krisys/transactionrecord"
)

// Delivery - what happened to a sent transaction
type Delivery string

// possible deliveries
const (
	Submitted = Delivery("submitted") // accepted by the authority
	Queued    = Delivery("queued")    // authority unreachable, held for relay
)

// Send - submit a transaction, queueing it if the authority cannot be
// reached
//
// an error from the authority itself is returned and nothing is
// queued; the returned transaction carries the assigned relay hash
func (e *Engine) Send(ctx context.Context, tx transactionrecord.Transaction) (transactionrecord.Transaction, Delivery, error) {
	tx, err := e.prepare(tx)
	if nil != err {
		return tx, "", err
	}
	if e.ledger.IsConfirmed(tx.RelayHash) {
		return tx, "", fault.ErrAlreadyConfirmed
	}
	if e.queue.Has(tx.RelayHash) {
		return tx, "", fault.ErrAlreadyQueued
	}

	if nil != e.authority {
		err = e.authority.Submit(ctx, tx)
		if nil == err {
			e.stats.Submitted.Increment()
			e.ledger.MarkConfirmed(tx.RelayHash, confirmation.Entry{
				ConfirmedAt: e.nowMillis(),
				Source:      confirmation.SourceSubmit,
			})
			e.queue.PruneConfirmed()
			mode.Set(mode.Online)
			e.log.Infof("send: %s  submitted", tx.RelayHash)
			return tx, Submitted, nil
		}
		if !fault.IsErrNetwork(err) {
			e.log.Errorf("send: %s  rejected: %s", tx.RelayHash, err)
			return tx, "", err
		}
		mode.Set(mode.Offline)
	}

	if _, err := e.queue.Enqueue(tx); nil != err {
		return tx, "", err
	}
	e.stats.Queued.Increment()
	e.log.Infof("send: %s  queued", tx.RelayHash)
	return tx, Queued, nil
}

// SendMessage - encrypt plaintext for one recipient and send it at
// the highest priority
func (e *Engine) SendMessage(ctx context.Context, from string, to string, plaintext string, recipientKey string) (transactionrecord.Transaction, Delivery, error) {
	ciphertext, err := e.Encrypt(plaintext, recipientKey)
	if nil != err {
		return transactionrecord.Transaction{}, "", err
	}
	return e.Send(ctx, transactionrecord.Transaction{
		StationAddress:   from,
		RelatedAddresses: []string{to},
		MessageData:      ciphertext,
		TypeField:        transactionrecord.Message,
		PriorityLevel:    transactionrecord.MaximumPriority,
	})
}

// Encrypt - armored ciphertext for the holder of recipientKey
func (e *Engine) Encrypt(plaintext string, recipientKey string) (string, error) {
	return e.crypter.Encrypt(plaintext, recipientKey)
}

// Decrypt - open a message addressed to this device's member
func (e *Engine) Decrypt(ciphertext string, privateKey string, passphrase []byte) (string, error) {
	return e.crypter.Decrypt(ciphertext, privateKey, passphrase)
}

// fill defaults and validate
func (e *Engine) prepare(tx transactionrecord.Transaction) (transactionrecord.Transaction, error) {
	if "" == tx.StationAddress || len(tx.StationAddress) > synchronise.MaxStationAddressLength {
		return tx, fault.ErrInvalidTransaction
	}
	if len(tx.MessageData) > synchronise.MaxMessageLength {
		return tx, fault.ErrMessageTooLong
	}
	if 0 == tx.PriorityLevel {
		tx.PriorityLevel = transactionrecord.DefaultPriority
	}
	if !transactionrecord.ValidPriority(tx.PriorityLevel) {
		return tx, fault.ErrInvalidPriority
	}
	if "" == tx.TypeField {
		tx.TypeField = transactionrecord.Message
	}
	if "" == tx.RelayHash {
		tx.RelayHash = transactionrecord.NewRelayHash()
	}
	if 0 == tx.TimestampCreated {
		tx.TimestampCreated = float64(e.now().UnixNano()) / float64(time.Second)
	}
	if "" == tx.OriginDevice {
		tx.OriginDevice = e.deviceID
	}
	if nil == tx.RelatedAddresses {
		tx.RelatedAddresses = []string{}
	}
	return tx, nil
}

// QueueResult - outcome of one pass over the queue
type QueueResult struct {
	Attempted int      `json:"attempted"`
	Success   int      `json:"success"`
	Failed    int      `json:"failed"`
	Pruned    int      `json:"pruned"`
	Errors    []string `json:"errors"`
}

// ProcessQueue - resubmit pending messages in queue order
//
// stops at the first network failure since the rest would fail too;
// a message the authority rejects stays queued and the pass continues
func (e *Engine) ProcessQueue(ctx context.Context) (QueueResult, error) {
	return e.drain(ctx, confirmation.SourceProcessQueue, true)
}

// Flush - station variant of ProcessQueue
//
// every pending message is tried regardless of failures and delivered
// entries are removed from the queue
func (e *Engine) Flush(ctx context.Context) (QueueResult, error) {
	return e.drain(ctx, confirmation.SourceStationFlush, false)
}

func (e *Engine) drain(ctx context.Context, source string, stopOnNetwork bool) (QueueResult, error) {
	result := QueueResult{Errors: []string{}}
	if nil == e.authority {
		return result, fault.ErrNoAuthority
	}

	var lastErr error
	online := false

loop:
	for _, item := range e.queue.Pending() {
		if err := ctx.Err(); nil != err {
			lastErr = fault.NetworkError(err.Error())
			break loop
		}

		result.Attempted += 1
		relayHash := item.RelayHash
		if err := e.queue.MarkAttempt(relayHash); nil != err {
			// pruned by a concurrent refresh
			continue loop
		}

		err := e.authority.Submit(ctx, item.Transaction)
		switch {
		case nil == err:
			online = true
			e.delivered(relayHash, source)
			e.stats.Sent.Increment()
			result.Success += 1

		case fault.IsErrNetwork(err):
			result.Failed += 1
			result.Errors = append(result.Errors, relayHash+": "+err.Error())
			lastErr = err
			if stopOnNetwork {
				break loop
			}

		default:
			online = true
			result.Failed += 1
			result.Errors = append(result.Errors, relayHash+": "+err.Error())
			e.log.Warnf("%s: %s  rejected: %s", source, relayHash, err)
		}
	}

	e.Lock()
	result.Pruned = e.queue.PruneConfirmed() + e.queue.PruneSent()
	e.Unlock()

	if online {
		mode.Set(mode.Online)
	} else if nil != lastErr && fault.IsErrNetwork(lastErr) {
		mode.Set(mode.Offline)
	}

	if 0 != result.Attempted {
		e.log.Infof("%s: attempted: %d  success: %d  failed: %d  pruned: %d",
			source, result.Attempted, result.Success, result.Failed, result.Pruned)
	}
	if stopOnNetwork && nil != lastErr {
		return result, lastErr
	}
	return result, nil
}

// record a successful submit; Submit itself runs without the engine
// lock so only this step is serialised against Reset and Refresh
func (e *Engine) delivered(relayHash string, source string) {
	e.Lock()
	defer e.Unlock()

	sentAt := e.nowMillis()
	if err := e.queue.MarkSent(relayHash, sentAt); nil != err {
		e.log.Warnf("%s: %s  mark sent: %s", source, relayHash, err)
	}
	e.ledger.MarkConfirmed(relayHash, confirmation.Entry{
		ConfirmedAt: sentAt,
		Source:      source,
		SentAt:      sentAt,
	})
}
