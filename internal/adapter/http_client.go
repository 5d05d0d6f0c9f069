// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/go-resty/resty/v2"
)

const (
	breakerFailureThreshold = 5
	breakerCooldown         = 30 * time.Second
)

// DamClientConfig carries the tenant-scoped settings for one store client.
type DamClientConfig struct {
	// BaseURL is the store endpoint, e.g. "https://tenant.example.com".
	BaseURL string
	// APIKey authenticates every request.
	APIKey string
	// Domain identifies the tenant on shared store deployments.
	Domain string
	// Timeout bounds each individual request.
	Timeout time.Duration
	// MaxRetries is the total number of attempts for transient failures.
	MaxRetries int
}

type httpDamClient struct {
	client *resty.Client
	brk    *breaker

	logger *logger.Logger
}

// NewHTTPDamClient constructs an HTTP/REST implementation of [DamAPI] for a
// single tenant. Transient failures (transport errors, 429, 5xx) are retried
// with exponential backoff and jitter up to cfg.MaxRetries attempts; repeated
// failures open a circuit that rejects calls for a cooldown window.
//
// Returns an error if cfg.BaseURL is empty.
func NewHTTPDamClient(cfg DamClientConfig, log *logger.Logger) (DamAPI, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("empty store base url")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if log == nil {
		log = logger.Nop()
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("X-Api-Key", cfg.APIKey).
		SetHeader("X-Tenant-Domain", cfg.Domain).
		SetRetryCount(cfg.MaxRetries - 1).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r != nil && r.Request != nil && r.Request.Context() != nil && r.Request.Context().Err() != nil {
				return false // never retry a cancelled call
			}
			if err != nil {
				return true
			}
			return isTransient(r)
		})

	return &httpDamClient{
		client: cli,
		brk:    newBreaker(breakerFailureThreshold, breakerCooldown),
		logger: log,
	}, nil
}

// execute runs one store call through the circuit breaker.
func (c *httpDamClient) execute(call func() (*resty.Response, error)) (*resty.Response, error) {
	if !c.brk.allow() {
		return nil, ErrCircuitOpen
	}

	resp, err := call()
	if err != nil || isTransient(resp) {
		c.brk.failure()
	} else {
		c.brk.success()
	}
	return resp, err
}

func (c *httpDamClient) TestConnection(ctx context.Context) error {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().SetContext(ctx).Get("/api/v1/connection/test")
	})
	if err != nil {
		return fmt.Errorf("test connection request: %w", err)
	}
	return mapHTTPError(resp)
}

func (c *httpDamClient) GetJobList(ctx context.Context) ([]JobDefinition, error) {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().SetContext(ctx).Get("/api/v1/jobs")
	})
	if err != nil {
		return nil, fmt.Errorf("get job list request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var jobs []JobDefinition
	if err = json.Unmarshal(resp.Body(), &jobs); err != nil {
		return nil, fmt.Errorf("decode job list response: %w", err)
	}
	return jobs, nil
}

func (c *httpDamClient) UpdateJob(ctx context.Context, job JobDefinition) error {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(job).
			Put("/api/v1/jobs/" + job.ID)
	})
	if err != nil {
		return fmt.Errorf("update job request: %w", err)
	}
	return mapHTTPError(resp)
}

func (c *httpDamClient) ListFolders(ctx context.Context, volumeID string) ([]RemoteFolder, error) {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			Get("/api/v1/volumes/" + volumeID + "/folders")
	})
	if err != nil {
		return nil, fmt.Errorf("list folders request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var folders []RemoteFolder
	if err = json.Unmarshal(resp.Body(), &folders); err != nil {
		return nil, fmt.Errorf("decode folder list response: %w", err)
	}
	return folders, nil
}

func (c *httpDamClient) CheckFolderExists(ctx context.Context, volumeID string, path string) (*RemoteFolder, error) {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetQueryParam("path", path).
			Get("/api/v1/volumes/" + volumeID + "/folders/lookup")
	})
	if err != nil {
		return nil, fmt.Errorf("check folder exists request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var folder RemoteFolder
	if err = json.Unmarshal(resp.Body(), &folder); err != nil {
		return nil, fmt.Errorf("decode folder lookup response: %w", err)
	}
	return &folder, nil
}

func (c *httpDamClient) CreateFolder(ctx context.Context, volumeID, parentID string, label string) (RemoteFolder, error) {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]any{"parent_id": parentID, "label": label}).
			Post("/api/v1/volumes/" + volumeID + "/folders")
	})
	if err != nil {
		return RemoteFolder{}, fmt.Errorf("create folder request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return RemoteFolder{}, err
	}

	var folder RemoteFolder
	if err = json.Unmarshal(resp.Body(), &folder); err != nil {
		return RemoteFolder{}, fmt.Errorf("decode create folder response: %w", err)
	}
	return folder, nil
}

func (c *httpDamClient) RenameFolder(ctx context.Context, folderID string, label string) error {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]any{"label": label}).
			Post("/api/v1/folders/" + folderID + "/rename")
	})
	if err != nil {
		return fmt.Errorf("rename folder request: %w", err)
	}
	return mapHTTPError(resp)
}

func (c *httpDamClient) MoveFolder(ctx context.Context, folderID, newParentID string) error {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]any{"parent_id": newParentID}).
			Post("/api/v1/folders/" + folderID + "/move")
	})
	if err != nil {
		return fmt.Errorf("move folder request: %w", err)
	}
	return mapHTTPError(resp)
}

func (c *httpDamClient) DeleteFolder(ctx context.Context, folderID string) error {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			Delete("/api/v1/folders/" + folderID)
	})
	if err != nil {
		return fmt.Errorf("delete folder request: %w", err)
	}
	return mapHTTPError(resp)
}

func (c *httpDamClient) CheckFileExists(ctx context.Context, folderID string, fileName string) (*RemoteItem, error) {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetQueryParam("name", fileName).
			Get("/api/v1/folders/" + folderID + "/items/lookup")
	})
	if err != nil {
		return nil, fmt.Errorf("check file exists request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var item RemoteItem
	if err = json.Unmarshal(resp.Body(), &item); err != nil {
		return nil, fmt.Errorf("decode item lookup response: %w", err)
	}
	return &item, nil
}

func (c *httpDamClient) GetModifiedItems(ctx context.Context, q ModifiedItemsQuery) (ModifiedItemsPage, error) {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"active":         strconv.FormatBool(q.Active),
				"last_item_id":   strings.TrimSpace(q.LastItemID),
				"page_size":      strconv.Itoa(q.PageSize),
				"modified_after": strconv.FormatInt(q.ModifiedAfter, 10),
			}).
			Get("/api/v1/volumes/" + q.VolumeID + "/items/modified")
	})
	if err != nil {
		return ModifiedItemsPage{}, fmt.Errorf("get modified items request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return ModifiedItemsPage{}, err
	}

	var page ModifiedItemsPage
	if err = json.Unmarshal(resp.Body(), &page); err != nil {
		return ModifiedItemsPage{}, fmt.Errorf("decode modified items response: %w", err)
	}
	return page, nil
}

func (c *httpDamClient) GetUploadDetails(ctx context.Context, folderID string, fileName string, size int64) (UploadTicket, error) {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]any{"folder_id": folderID, "file_name": fileName, "size": size}).
			Post("/api/v1/items/upload-details")
	})
	if err != nil {
		return UploadTicket{}, fmt.Errorf("get upload details request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return UploadTicket{}, err
	}

	var ticket UploadTicket
	if err = json.Unmarshal(resp.Body(), &ticket); err != nil {
		return UploadTicket{}, fmt.Errorf("decode upload details response: %w", err)
	}
	return ticket, nil
}

func (c *httpDamClient) GetUploadDetailsForReplacement(ctx context.Context, itemID string, size int64) (UploadTicket, error) {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]any{"size": size}).
			Post("/api/v1/items/" + itemID + "/replacement-details")
	})
	if err != nil {
		return UploadTicket{}, fmt.Errorf("get replacement upload details request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return UploadTicket{}, err
	}

	var ticket UploadTicket
	if err = json.Unmarshal(resp.Body(), &ticket); err != nil {
		return UploadTicket{}, fmt.Errorf("decode replacement upload details response: %w", err)
	}
	return ticket, nil
}

func (c *httpDamClient) CreateItem(ctx context.Context, ticket UploadTicket, meta ItemMeta) (RemoteItem, error) {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]any{
				"ticket_id": ticket.TicketID,
				"key":       ticket.Key,
				"folder_id": meta.FolderID,
				"file_name": meta.FileName,
				"checksum":  meta.Checksum,
				"size":      meta.Size,
			}).
			Post("/api/v1/items")
	})
	if err != nil {
		return RemoteItem{}, fmt.Errorf("create item request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return RemoteItem{}, err
	}

	var item RemoteItem
	if err = json.Unmarshal(resp.Body(), &item); err != nil {
		return RemoteItem{}, fmt.Errorf("decode create item response: %w", err)
	}
	return item, nil
}

func (c *httpDamClient) ReplaceAsset(ctx context.Context, itemID string, ticket UploadTicket) error {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]any{"ticket_id": ticket.TicketID, "key": ticket.Key}).
			Post("/api/v1/items/" + itemID + "/replace")
	})
	if err != nil {
		return fmt.Errorf("replace asset request: %w", err)
	}
	return mapHTTPError(resp)
}

func (c *httpDamClient) DeleteItem(ctx context.Context, itemID string) error {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			Delete("/api/v1/items/" + itemID)
	})
	if err != nil {
		return fmt.Errorf("delete item request: %w", err)
	}
	return mapHTTPError(resp)
}

func (c *httpDamClient) GetS3Info(ctx context.Context) (S3Info, error) {
	resp, err := c.execute(func() (*resty.Response, error) {
		return c.client.R().SetContext(ctx).Get("/api/v1/storage/s3-info")
	})
	if err != nil {
		return S3Info{}, fmt.Errorf("get s3 info request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return S3Info{}, err
	}

	var info S3Info
	if err = json.Unmarshal(resp.Body(), &info); err != nil {
		return S3Info{}, fmt.Errorf("decode s3 info response: %w", err)
	}
	return info, nil
}

func (c *httpDamClient) DownloadAsset(ctx context.Context, downloadURL string) (io.ReadCloser, int64, error) {
	if !c.brk.allow() {
		return nil, 0, ErrCircuitOpen
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(downloadURL)
	if err != nil {
		c.brk.failure()
		return nil, 0, fmt.Errorf("download asset request: %w", err)
	}

	raw := resp.RawResponse
	if raw.StatusCode < http.StatusOK || raw.StatusCode >= http.StatusMultipleChoices {
		defer raw.Body.Close()
		if raw.StatusCode >= http.StatusInternalServerError {
			c.brk.failure()
		}
		body, _ := io.ReadAll(io.LimitReader(raw.Body, 4096))
		return nil, 0, fmt.Errorf("http %d: %s", raw.StatusCode, strings.TrimSpace(string(body)))
	}

	c.brk.success()
	return raw.Body, raw.ContentLength, nil
}
