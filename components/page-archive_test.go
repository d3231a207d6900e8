package components

import (
	"context"
	"errors"
	"testing"

	"github.com/relloyd/geniepipe/genie"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (p *fakePutter) Put(_ context.Context, key string, data []byte, contentType string) error {
	if p.err != nil {
		return p.err
	}
	p.objects[key] = data
	p.types[key] = contentType
	return nil
}

func TestPageKey(t *testing.T) {
	assert.Equal(t, "r1/spaces/page-000001.json", PageKey("r1", genie.Page{Kind: genie.KindSpaces, Number: 1}))
	assert.Equal(t, "r1/messages/S1/C1/page-000012.json",
		PageKey("r1", genie.Page{Kind: genie.KindMessages, Parents: []string{"S1", "C1"}, Number: 12}))
}

func TestPageArchiveHandlePage(t *testing.T) {
	p := &fakePutter{objects: map[string][]byte{}, types: map[string]string{}}
	a := NewPageArchive(logrus.New(), p, "r1", nil)
	body := []byte(`{"spaces":[]}`)
	require.NoError(t, a.HandlePage(context.Background(), genie.Page{Kind: genie.KindSpaces, Number: 2, Body: body}))
	assert.Equal(t, body, p.objects["r1/spaces/page-000002.json"])
	assert.Equal(t, "application/json", p.types["r1/spaces/page-000002.json"])

	p.err = errors.New("denied")
	assert.Error(t, a.HandlePage(context.Background(), genie.Page{Kind: genie.KindSpaces, Number: 3}))
}
