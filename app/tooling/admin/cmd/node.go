package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/fiatlux/business/web/errs"
)

// client is used for every call the admin makes to a node.
var client = http.Client{
	Timeout: 10 * time.Second,
}

// call performs the request against the node and decodes the response into
// dataResp when one is provided. Errors reported by the node are returned
// with the message the node sent.
func call(ctx context.Context, method string, url string, dataSend any, dataResp any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var er errs.Response
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
			return fmt.Errorf("node responded with status %d", resp.StatusCode)
		}

		if len(er.Fields) > 0 {
			return fmt.Errorf("node responded with status %d: %s: %v", resp.StatusCode, er.Error, er.Fields)
		}
		return fmt.Errorf("node responded with status %d: %s", resp.StatusCode, er.Error)
	}

	if dataResp != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(dataResp); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
