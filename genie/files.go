package genie

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// VolumeTarget returns the absolute Unity Catalog path for localFile uploaded into volume.
// volume must be of the form catalog.schema.volume and subdir is optional.
// The result always stays inside the volume: subdir may not contain . or .. segments.
func VolumeTarget(volume string, subdir string, localFile string) (string, error) {
	parts := strings.Split(strings.TrimSpace(volume), ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("volume path %q must be of the form catalog.schema.volume", volume)
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
		if parts[i] == "" {
			return "", fmt.Errorf("volume path %q must not contain empty parts", volume)
		}
		if strings.ContainsAny(parts[i], `/\`) {
			return "", fmt.Errorf("volume path %q must not contain slashes", volume)
		}
	}
	name := filepath.Base(localFile)
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("bad local file name %q", localFile)
	}
	elems := append([]string{"/Volumes"}, parts...)
	if sub := strings.Trim(strings.TrimSpace(subdir), "/"); sub != "" {
		for _, seg := range strings.Split(sub, "/") {
			if seg == "" || seg == "." || seg == ".." {
				return "", fmt.Errorf("bad subdirectory %q: segments must not be empty, . or ..", subdir)
			}
			elems = append(elems, seg)
		}
	}
	elems = append(elems, name)
	return strings.Join(elems, "/"), nil
}

// UploadFile writes body to the absolute volume path target, overwriting any existing file.
func (c *Client) UploadFile(ctx context.Context, target string, body io.ReadSeeker) error {
	if !strings.HasPrefix(target, "/Volumes/") {
		return fmt.Errorf("upload target %q is not a volume path", target)
	}
	segs := strings.Split(strings.TrimPrefix(target, "/"), "/")
	for i := range segs {
		segs[i] = url.PathEscape(segs[i])
	}
	q := url.Values{}
	q.Set("overwrite", "true")
	if err := c.put(ctx, "/api/2.0/fs/files/"+strings.Join(segs, "/"), q, body); err != nil {
		return errors.Wrapf(err, "error uploading file to %v", target)
	}
	c.log.Info("uploaded file to ", target)
	return nil
}
