// Package document encodes synthesized reports into downloadable files.
package document

import (
	"errors"
	"fmt"

	"clientreport/internal/report"
)

// Encoder turns a report into a file body.
type Encoder interface {
	Encode(rep *report.Report) ([]byte, error)
	Extension() string
	ContentType() string
}

// Artifact is an encoded report ready to be stored or downloaded.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the length of the encoded body.
func (a *Artifact) Size() int { return len(a.Data) }

// Build encodes rep with enc and names the result after the client.
func Build(enc Encoder, rep *report.Report) (*Artifact, error) {
	if rep == nil {
		return nil, errors.New("nil report")
	}
	data, err := enc.Encode(rep)
	if err != nil {
		return nil, fmt.Errorf("encode report for %q: %w", rep.ClientName, err)
	}
	return &Artifact{
		Name:        rep.FileName(enc.Extension()),
		ContentType: enc.ContentType(),
		Data:        data,
	}, nil
}
