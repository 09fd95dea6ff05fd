// Package importer loads clients and their notes from a YAML document.
// Every record goes through the same save hooks as an API request, so an
// import can never bypass validation or ownership rules.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/artpar/notekeeper/internal/core/auth"
	"github.com/artpar/notekeeper/internal/core/domain"
	"github.com/artpar/notekeeper/internal/shell/guard"
	"github.com/artpar/notekeeper/internal/shell/hooks"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Document
// =============================================================================

// Document is the import file layout.
//
//	clients:
//	  - name: Ada Lovelace
//	    email: ada@example.com
//	    phone: "+1 555 123 4567"
//	    notes:
//	      - title: Kickoff
//	        content: Agenda
type Document struct {
	Clients []ClientEntry `yaml:"clients"`
}

// ClientEntry is one client and the notes to attach to it.
type ClientEntry struct {
	domain.ClientFields `yaml:",inline"`
	Notes               []NoteEntry `yaml:"notes"`
}

// NoteEntry is a note nested under its client.
type NoteEntry struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// Load reads and parses an import file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a document, rejecting unknown fields.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &doc, nil
}

// =============================================================================
// Report
// =============================================================================

// Outcome of a single record.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Result describes what happened to one record in the document.
type Result struct {
	Entity  domain.Entity
	Path    string // e.g. "clients[1].notes[0]"
	ID      string
	Outcome Outcome
	Kind    domain.ErrorKind
	Message string
}

// Report summarizes an import run.
type Report struct {
	Results []Result
	Created int
	Failed  int
	Skipped int
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeFailed:
		r.Failed++
	case OutcomeSkipped:
		r.Skipped++
	}
}

// =============================================================================
// Importer
// =============================================================================

// Store is the persistence the importer needs.
type Store interface {
	guard.Store
	CreateClient(ctx context.Context, c *domain.Client) error
	CreateNote(ctx context.Context, n *domain.Note) error
}

// Importer saves document records as a single actor.
type Importer struct {
	store  Store
	hooks  *hooks.Hooks
	logger *slog.Logger
}

// New creates an importer.
func New(s Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		store:  s,
		hooks:  hooks.New(s, logger),
		logger: logger.With("component", "importer"),
	}
}

// Import saves every client in doc, then its notes. A rejected record is
// reported and the run continues; the notes of a rejected client are skipped.
// The returned error is only set when ctx is done.
func (im *Importer) Import(ctx context.Context, actor auth.Context, doc *Document) (*Report, error) {
	report := &Report{}

	for i, entry := range doc.Clients {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		path := fmt.Sprintf("clients[%d]", i)
		client := domain.NewClient(entry.ClientFields)
		err := im.hooks.BeforeSave(ctx, actor, client, true)
		if err == nil {
			err = im.store.CreateClient(ctx, client)
		}
		if err != nil {
			im.logger.Warn("client rejected", "path", path, "error", err)
			report.add(failed(domain.EntityClient, path, err))
			for j := range entry.Notes {
				report.add(Result{
					Entity:  domain.EntityNote,
					Path:    fmt.Sprintf("%s.notes[%d]", path, j),
					Outcome: OutcomeSkipped,
					Message: "client was not created",
				})
			}
			continue
		}
		report.add(Result{Entity: domain.EntityClient, Path: path, ID: client.ID, Outcome: OutcomeCreated})

		for j, ne := range entry.Notes {
			notePath := fmt.Sprintf("%s.notes[%d]", path, j)
			note := domain.NewNote(domain.NoteFields{
				Title:    ne.Title,
				Content:  ne.Content,
				ClientID: client.ID,
			})
			err := im.hooks.BeforeSave(ctx, actor, note, true)
			if err == nil {
				err = im.store.CreateNote(ctx, note)
			}
			if err != nil {
				im.logger.Warn("note rejected", "path", notePath, "error", err)
				report.add(failed(domain.EntityNote, notePath, err))
				continue
			}
			report.add(Result{Entity: domain.EntityNote, Path: notePath, ID: note.ID, Outcome: OutcomeCreated})
		}
	}

	im.logger.Info("import finished",
		"actor", actor.UserID,
		"created", report.Created,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report, nil
}

func failed(entity domain.Entity, path string, err error) Result {
	return Result{
		Entity:  entity,
		Path:    path,
		Outcome: OutcomeFailed,
		Kind:    domain.KindOf(err),
		Message: domain.PublicMessage(err),
	}
}
