package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/internal/utils"
	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/spf13/cobra"
)

func newRopCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rop [session] [name] [request]",
		Short: "Run one ROP in a session",
		Long: `Run one ROP in a session and print the JSON response.

The request is a JSON object with the fields the ROP reads; binary fields
such as props and data are base64. Without a request argument, or with
"-", the request is read from standard input.

Examples:
  icsctl rop $SID Logon '{"private":true}'
  icsctl rop $SID OpenFolder '{"hin":1,"fid":13}'
  echo '{"hin":2,"count":10}' | icsctl rop $SID GetLocalReplicaIDs`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireToken(); err != nil {
				return err
			}

			var src io.Reader = cmd.InOrStdin()
			if len(args) == 3 && args[2] != "-" {
				src = strings.NewReader(args[2])
			}
			req, err := decodeRopRequest(src)
			if err != nil {
				return err
			}

			resp, callErr := c.rops.Call(cmd.Context(), args[0], args[1], req)
			var code mapi.ErrorCode
			if callErr != nil && !errors.As(callErr, &code) {
				return fmt.Errorf("%s: %w", args[1], callErr)
			}

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("encode response: %w", err)
			}
			fmt.Fprintln(c.out, string(out))
			return callErr
		},
	}
}

func decodeRopRequest(r io.Reader) (models.RopRequest, error) {
	var req models.RopRequest
	data, err := io.ReadAll(r)
	if err != nil {
		return req, fmt.Errorf("read request: %w", err)
	}
	if utils.IsBlank(data) {
		return req, nil
	}
	if err = utils.DecodeJSON(bytes.NewReader(data), &req); err != nil {
		return req, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}
