// Package report holds the period-close collaborator interfaces: the archive
// generator and the mailer. The core hands them a snapshot and does not know
// the artifact layout or the mail transport.
package report

import (
	"go-gudang-kelurahan/internal/model"
)

// Snapshot is the read-only copy of the ledgers taken before the reset
// transaction begins.
type Snapshot struct {
	Items    []model.Item
	Inbound  []model.InboundTransaction
	Outbound []model.OutboundTransaction
	Loans    []model.Loan
	Audit    []model.AuditLog
}

// Artifact is the generated archive handed to the mailer.
type Artifact struct {
	Filename string
	MIME     string
	Content  []byte
}

type Generator interface {
	Generate(s *Snapshot) (*Artifact, error)
}

type Mailer interface {
	Send(to []string, subject, body string, attachments ...Artifact) error
}
