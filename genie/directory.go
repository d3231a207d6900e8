package genie

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// GetUser fetches a user from the workspace SCIM directory.
// It returns ErrUserNotFound when the directory responds with 404.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrUserNotFound
	}
	body, err := c.get(ctx, fmt.Sprintf("/api/2.0/preview/scim/v2/Users/%v", url.PathEscape(id)), nil)
	if IsStatus(err, http.StatusNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching user %v", id)
	}
	return parseScimUser(id, body)
}

func parseScimUser(id string, body []byte) (*User, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("error fetching user %v: response is not valid JSON", id)
	}
	r := gjson.ParseBytes(body)
	u := &User{
		Id:          r.Get("id").String(),
		DisplayName: r.Get("displayName").String(),
		Email:       r.Get("userName").String(),
	}
	if u.Id == "" {
		u.Id = id
	}
	if u.Email == "" { // service principals have no userName.
		u.Email = r.Get(`emails.#(primary==true).value`).String()
	}
	if a := r.Get("active"); a.Exists() {
		v := a.Bool()
		u.Active = &v
	}
	return u, nil
}
