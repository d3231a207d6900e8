package genie

import (
	"context"
	"encoding/json"
	"io"
)

// PageIterator returns the records of a listing one page at a time.
// Next returns io.EOF once there are no more pages.
type PageIterator interface {
	Next(ctx context.Context) ([]json.RawMessage, error)
}

// Lister lists the Genie resources of a workspace.
type Lister interface {
	Spaces() PageIterator
	Conversations(spaceId string) PageIterator
	Messages(spaceId string, conversationId string) PageIterator
}

// UserDirectory resolves user ids to their details.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*User, error)
}

// FileUploader writes files to Unity Catalog volumes.
type FileUploader interface {
	UploadFile(ctx context.Context, target string, body io.ReadSeeker) error
}

// User is the subset of a workspace user used to enrich messages.
type User struct {
	Id          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Active      *bool  `json:"active,omitempty"`
}

// All drains p and returns every record.
func All(ctx context.Context, p PageIterator) ([]json.RawMessage, error) {
	var retval []json.RawMessage
	for {
		page, err := p.Next(ctx)
		if err == io.EOF {
			return retval, nil
		}
		if err != nil {
			return retval, err
		}
		retval = append(retval, page...)
	}
}
