// Package filestore implements the remote object store behind file
// attachments.
package filestore

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/file"
)

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

var _ file.Storage = (*cloudinaryStorage)(nil)

func NewCloudinaryStorage(conf *core.Config) (*cloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(conf.Cloudinary.CloudName, conf.Cloudinary.APIKey, conf.Cloudinary.APISecret)
	if err != nil {
		return nil, errors.Wrap(err, "initializing cloudinary client")
	}
	return &cloudinaryStorage{cld: cld, folder: conf.Cloudinary.Folder}, nil
}

func (st *cloudinaryStorage) Upload(ctx context.Context, content io.Reader, filename string) (file.UploadResult, error) {
	res, err := st.cld.Upload.Upload(ctx, content, uploader.UploadParams{
		Folder:           st.folder,
		FilenameOverride: filename,
		UseFilename:      api.Bool(true),
		UniqueFilename:   api.Bool(true),
	})
	if err != nil {
		return file.UploadResult{}, errors.Wrap(err, "uploading to cloudinary")
	}
	return file.UploadResult{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (st *cloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	res, err := st.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return errors.Wrap(err, "destroying cloudinary object")
	}
	if res.Result != "ok" && res.Result != "not found" {
		return errors.Errorf("destroying cloudinary object: %s", res.Result)
	}
	return nil
}
