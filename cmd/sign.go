package main

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listenx/internal/shared"
	"github.com/desertthunder/listenx/internal/weapi"
)

type signResult struct {
	weapi.Form
	Key       string          `json:"key,omitempty"`
	Plaintext json.RawMessage `json:"plaintext,omitempty"`
}

// Sign prints the weapi form for a JSON payload.
//
// With --decrypt both AES layers are reversed again using the session key, which shows
// whether a given key and payload round-trip.
func (r *Runner) Sign(ctx context.Context, cmd *cli.Command) error {
	data := []byte(cmd.String("data"))
	if !json.Valid(data) {
		return fmt.Errorf("%w: --data must be JSON", shared.ErrInvalidArgument)
	}

	key := cmp.Or(cmd.String("key"), weapi.SecretKey(r.source, weapi.KeySize))
	form, err := weapi.EncryptWithKey(data, key)
	if err != nil {
		return err
	}

	res := signResult{Form: form}
	if cmd.Bool("decrypt") {
		inner, err := weapi.Decrypt(form.Params, key)
		if err != nil {
			return err
		}
		plain, err := weapi.Decrypt(string(inner), weapi.PresetKey)
		if err != nil {
			return err
		}
		res.Key, res.Plaintext = key, plain
	}

	return r.writeJSON(res, true)
}
