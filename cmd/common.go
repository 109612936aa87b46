/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

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
package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Tispy-Bacon/wordfilter/internal/store"
)

func configureLogger(l *logrus.Logger, out io.Writer, verbose bool) {
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
}

// openHistory opens the run history for a filtering run. Problems are
// logged and history is skipped; they never stop the run.
func openHistory() *store.Store {
	if !cfg.HistoryEnabled() {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.WithError(err).Warn("failed to create history directory, continuing without history")
		return nil
	}

	db, err := store.New(cfg.DBPath)
	if err != nil {
		log.WithError(err).Warn("failed to open history database, continuing without history")
		return nil
	}
	return db
}
