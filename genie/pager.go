package genie

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/constants"
	"github.com/tidwall/gjson"
)

const (
	KindSpaces        = "spaces"
	KindConversations = "conversations"
	KindMessages      = "messages"
)

// Page is the raw response of one listing request.
type Page struct {
	Kind    string   // one of the Kind constants
	Parents []string // the ids of the parent resources, outermost first
	Number  int      // 1-based page number within the listing
	Body    []byte
}

// PageHandler is called with every page before its records are returned.
type PageHandler func(ctx context.Context, p Page) error

// Pager lazily walks a token paginated listing.
// It is not restartable: once exhausted, Next keeps returning io.EOF.
type Pager struct {
	client   *Client
	kind     string
	parents  []string
	path     string
	itemsKey string
	query    url.Values
	token    string
	pages    int
	done     bool
	OnPage   PageHandler
}

func (c *Client) newPager(kind string, path string, itemsKey string, query url.Values, parents ...string) *Pager {
	return &Pager{
		client:   c,
		kind:     kind,
		parents:  parents,
		path:     path,
		itemsKey: itemsKey,
		query:    query,
		OnPage:   c.onPage,
	}
}

// Spaces lists the Genie spaces of the workspace.
func (c *Client) Spaces() PageIterator {
	return c.newPager(KindSpaces, "/api/2.0/genie/spaces", "spaces", nil)
}

// Conversations lists all conversations of a space, including those of other users.
func (c *Client) Conversations(spaceId string) PageIterator {
	q := url.Values{}
	q.Set("include_all", "true")
	return c.newPager(KindConversations,
		fmt.Sprintf("/api/2.0/genie/spaces/%v/conversations", url.PathEscape(spaceId)),
		"conversations", q, spaceId)
}

// Messages lists the messages of a conversation.
func (c *Client) Messages(spaceId string, conversationId string) PageIterator {
	return c.newPager(KindMessages,
		fmt.Sprintf("/api/2.0/genie/spaces/%v/conversations/%v/messages", url.PathEscape(spaceId), url.PathEscape(conversationId)),
		"messages", nil, spaceId, conversationId)
}

// Next fetches the next page and returns its records.
// A page may legitimately be empty while more pages remain.
func (p *Pager) Next(ctx context.Context) ([]json.RawMessage, error) {
	if p.done {
		return nil, io.EOF
	}
	q := url.Values{}
	for k, v := range p.query {
		q[k] = append([]string(nil), v...)
	}
	q.Set("page_size", strconv.Itoa(p.client.cfg.PageSize))
	if p.token != "" {
		q.Set("page_token", p.token)
	}
	body, err := p.client.get(ctx, p.path, q)
	if err != nil {
		return nil, errors.Wrapf(err, "error listing %v", p.kind)
	}
	p.pages++
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("error listing %v: page %v is not valid JSON", p.kind, p.pages)
	}
	if p.OnPage != nil {
		if err = p.OnPage(ctx, Page{Kind: p.kind, Parents: p.parents, Number: p.pages, Body: body}); err != nil {
			return nil, errors.Wrapf(err, "error handling page %v of %v", p.pages, p.kind)
		}
	}
	items := gjson.GetBytes(body, p.itemsKey)
	retval := make([]json.RawMessage, 0, len(items.Array()))
	items.ForEach(func(_, v gjson.Result) bool {
		retval = append(retval, json.RawMessage(v.Raw))
		return true
	})
	next := gjson.GetBytes(body, constants.GenieNextPageTokenField)
	switch {
	case !next.Exists(), next.Type == gjson.Null, next.String() == "":
		p.done = true
	case next.String() == p.token:
		return nil, fmt.Errorf("error listing %v: next page token %q did not advance", p.kind, p.token)
	default:
		p.token = next.String()
	}
	p.client.log.Debug("fetched page ", p.pages, " of ", p.kind, " with ", len(retval), " records")
	return retval, nil
}

// Pages returns the number of pages fetched so far.
func (p *Pager) Pages() int {
	return p.pages
}
