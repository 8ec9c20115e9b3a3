// Package store persistiert das Dokument als versioniertes JSON-Snapshot.
// Alle Backends implementieren dasselbe Compare-and-Swap-Protokoll: ein
// Schreiben gilt nur, wenn die erwartete Versionsmarke noch aktuell ist;
// ein verlorener Konflikt wird als util.ErrStoreConflict gemeldet und nie
// stillschweigend überschrieben.
package store

import (
	"context"
	"time"
)

// OpTimeout begrenzt jede Speicheroperation; der Dienst hängt nie unbegrenzt
// an einem entfernten Speicher.
const OpTimeout = 10 * time.Second

// Store ist der Vertrag des versionierten Dokumentspeichers.
type Store interface {
	// Fetch liefert Inhalt und Versionsmarke des Snapshots.
	// util.ErrStoreNotFound, wenn noch kein Dokument existiert.
	Fetch(ctx context.Context) ([]byte, string, error)

	// CompareAndSwap schreibt content, wenn expected noch die aktuelle
	// Versionsmarke ist (leer = Neuanlage), und liefert die neue Marke.
	// util.ErrStoreConflict bei einer zwischenzeitlichen Änderung.
	CompareAndSwap(ctx context.Context, expected string, content []byte) (string, error)

	// Name des Backends für Logs und Metriken.
	Name() string
}
