package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// Azure stores objects as block blobs in a container, optionally below a
// prefix.
type Azure struct {
	client    *azblob.Client
	container string
	prefix    string
	logger    *slog.Logger
}

func NewAzure(client *azblob.Client, container, prefix string, logger *slog.Logger) *Azure {
	return &Azure{
		client:    client,
		container: container,
		prefix:    strings.Trim(prefix, "/"),
		logger:    logger.With("container", container),
	}
}

func (a *Azure) URI() string {
	if a.prefix == "" {
		return "az://" + a.container
	}
	return "az://" + a.container + "/" + a.prefix
}

func (a *Azure) Read(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	name := joinKey(a.prefix, key)
	resp, err := a.client.DownloadStream(ctx, a.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: az://%s/%s", ErrNotFound, a.container, name)
		}
		return nil, fmt.Errorf("download blob %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", name, err)
	}
	return data, nil
}

func (a *Azure) Write(ctx context.Context, key string, data []byte, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	name := joinKey(a.prefix, key)
	opts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}
	if _, err := a.client.UploadBuffer(ctx, a.container, name, data, opts); err != nil {
		return fmt.Errorf("upload blob %s: %w", name, err)
	}
	return nil
}

func (a *Azure) List(ctx context.Context, prefix string) ([]string, error) {
	full := dirPrefix(joinKey(a.prefix, dirPrefix(prefix)))
	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{Prefix: &full})

	names := []string{}
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if bloberror.HasCode(err, bloberror.ContainerNotFound) {
				return []string{}, nil
			}
			return nil, fmt.Errorf("list az://%s/%s: %w", a.container, full, err)
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			if name, ok := childName(full, *item.Name); ok {
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names, nil
}

// CreateBase creates the container. A container that already exists is not
// an error.
func (a *Azure) CreateBase(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.logger.Info("Container already exists.")
			return nil
		}
		return fmt.Errorf("create container %s: %w", a.container, err)
	}
	a.logger.Info("Created blob container.")
	return nil
}

// NewAzureClient connects to accountURL with the default Azure credential
// chain (environment, workload identity, managed identity, CLI).
func NewAzureClient(accountURL string) (*azblob.Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azure blob client: %w", err)
	}
	return client, nil
}
