// Copyright 2018 The klaytn Authors
// This file is part of the klaytn library.
//
// The klaytn library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The klaytn library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the klaytn library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides the module-scoped structured logger used across the
// chainstate packages. It mirrors the NewModuleLogger(moduleName) convention
// used throughout the node, backed by zap instead of a hand-rolled sink.
package log

import (
	"go.uber.org/zap"
)

// Module names for NewModuleLogger, grouped here the way the node groups its
// own module identifiers (storage, consensus, common, ...).
const (
	Miner      = "miner"
	Sandbox    = "sandbox"
	Rewards    = "rewards"
	ArtifactDB = "artifactdb"
	Sink       = "sink"
	CMD        = "cmd"
)

var base = newBase()

func newBase() *zap.SugaredLogger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return l.Sugar()
}

// Logger is a leveled, key-value structured logger scoped to one module.
type Logger interface {
	New(kv ...interface{}) Logger
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
	Crit(msg string, kv ...interface{})
}

type moduleLogger struct {
	module string
	s      *zap.SugaredLogger
}

// NewModuleLogger returns the logger for the named module, analogous to
// log.NewModuleLogger(log.Common) elsewhere in the node.
func NewModuleLogger(module string) Logger {
	return &moduleLogger{module: module, s: base.With("module", module)}
}

func (m *moduleLogger) New(kv ...interface{}) Logger {
	return &moduleLogger{module: m.module, s: m.s.With(kv...)}
}

func (m *moduleLogger) Debug(msg string, kv ...interface{}) { m.s.Debugw(msg, kv...) }
func (m *moduleLogger) Info(msg string, kv ...interface{})  { m.s.Infow(msg, kv...) }
func (m *moduleLogger) Warn(msg string, kv ...interface{})  { m.s.Warnw(msg, kv...) }
func (m *moduleLogger) Error(msg string, kv ...interface{}) { m.s.Errorw(msg, kv...) }

// Crit logs at error level and panics, matching the node's convention that a
// "critical" log line accompanies a fatal, unrecoverable condition.
func (m *moduleLogger) Crit(msg string, kv ...interface{}) {
	m.s.Errorw(msg, kv...)
	panic(msg)
}
