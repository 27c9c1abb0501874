// Package verify submits content to the credibility-assessment service and
// normalizes the outcome.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/sceptre-labs/sceptre/src/dispatch"
)

// Dispatcher sends verification requests. One instance allows one request
// in flight; overlapping Submit calls fail with dispatch.ErrInFlight before
// anything is sent.
type Dispatcher struct {
	baseURL    string
	httpClient *http.Client
	gate       dispatch.Gate
}

func NewDispatcher(baseURL string) *Dispatcher {
	return &Dispatcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: dispatch.DefaultTimeout,
		},
	}
}

// Generation returns the number of the most recently admitted submission.
// A caller that tears down mid-request compares it against the generation
// stamped on a late result and discards mismatches.
func (d *Dispatcher) Generation() uint64 {
	return d.gate.Generation()
}

// Submit sends one submission and returns the parsed verdict. Failures come
// back as dispatch.TransportError, dispatch.ResponseError, or
// dispatch.ParseError; none of them mutate prior state and none are retried
// automatically.
func (d *Dispatcher) Submit(ctx context.Context, sub Submission, token, sessionID string) (*Result, error) {
	gen, err := d.gate.Acquire()
	if err != nil {
		return nil, err
	}
	defer d.gate.Release()

	req, err := d.buildRequest(sub, sessionID)
	if err != nil {
		return nil, err
	}

	body, err := dispatch.Do(ctx, d.httpClient, req, token)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", sub.Modality, err)
	}

	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("verify %s: %w", sub.Modality, &dispatch.ParseError{Err: err})
	}

	res.Generation = gen
	if res.ClassificationScore < 0 || res.ClassificationScore > 1 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("classification_score %v outside [0,1]", res.ClassificationScore))
	}
	return &res, nil
}

// buildRequest picks the one encoding for the submission's modality. Text
// and URL go url-encoded; files go multipart with the content type written
// by the multipart writer, not set by hand.
func (d *Dispatcher) buildRequest(sub Submission, sessionID string) (*http.Request, error) {
	endpoint := d.baseURL + "/verify"

	switch sub.Modality {
	case ModalityText, ModalityURL:
		form := url.Values{}
		form.Set("session_id", sessionID)
		if sub.Modality == ModalityText {
			form.Set("content", sub.Content)
		} else {
			form.Set("url", sub.Link)
		}
		req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, fmt.Errorf("create verify request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil

	case ModalityFile:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if err := w.WriteField("session_id", sessionID); err != nil {
			return nil, fmt.Errorf("write session field: %w", err)
		}
		part, err := w.CreateFormFile("file", sub.Filename)
		if err != nil {
			return nil, fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(sub.Data); err != nil {
			return nil, fmt.Errorf("write file part: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("finish multipart body: %w", err)
		}
		req, err := http.NewRequest("POST", endpoint, &buf)
		if err != nil {
			return nil, fmt.Errorf("create verify request: %w", err)
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		return req, nil
	}

	return nil, fmt.Errorf("unsupported modality %v", sub.Modality)
}
