package actions

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/genie"
	"github.com/relloyd/geniepipe/helper"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms/shared"
)

type UploadConfig struct {
	Connections      ConnectionHandler `errorTxt:"connections"`
	SourceConnection string            `errorTxt:"workspace <connection>" mandatory:"yes"`
	LocalFile        string            `errorTxt:"local file" mandatory:"yes"`
	Volume           string            `errorTxt:"volume of the form catalog.schema.volume" mandatory:"yes"`
	Subdir           string
	MaxRetries       int
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic bool
	// Uploader is used instead of a workspace client when set.
	Uploader genie.FileUploader
}

// RunUpload copies a local file into a Unity Catalog volume.
func RunUpload(cfg *UploadConfig) error {
	log := newActionLogger(cfg.LogLevel, cfg.StackDumpOnPanic)
	ctx, cancel := signalContext(log)
	defer cancel()
	target, err := Upload(ctx, log, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("File %q uploaded to %v\n", cfg.LocalFile, target)
	return nil
}

// Upload validates cfg and uploads the file, returning the volume path written.
func Upload(ctx context.Context, log logger.Logger, cfg *UploadConfig) (string, error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return "", err
	}
	target, err := genie.VolumeTarget(cfg.Volume, cfg.Subdir, cfg.LocalFile)
	if err != nil {
		return "", err
	}
	uploader := cfg.Uploader
	if uploader == nil {
		if uploader, err = newUploader(log, cfg); err != nil {
			return "", err
		}
	}
	f, err := os.Open(cfg.LocalFile)
	if err != nil {
		return "", errors.Wrap(err, "unable to open local file")
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error(closeErr)
		}
	}()
	if err = uploader.UploadFile(ctx, target, f); err != nil {
		return "", err
	}
	return target, nil
}

func newUploader(log logger.Logger, cfg *UploadConfig) (genie.FileUploader, error) {
	if cfg.Connections == nil {
		return nil, errors.New("missing connections")
	}
	c, err := cfg.Connections.GetConnectionDetails(cfg.SourceConnection)
	if err != nil {
		return nil, err
	}
	if c.Type != constants.ConnectionTypeWorkspace {
		return nil, fmt.Errorf("connection %q must be of type %v, got %v", cfg.SourceConnection, constants.ConnectionTypeWorkspace, c.Type)
	}
	host, token, err := shared.WorkspaceConnectionDetails{Dsn: c.Data[shared.DefaultDsnConnectionKeyNames.Dsn]}.GetHostAndToken()
	if err != nil {
		return nil, err
	}
	gc := genie.NewDefaultConfig(host, token)
	gc.MaxRetries = cfg.MaxRetries
	return genie.NewClient(log, gc)
}
