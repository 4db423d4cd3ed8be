package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/fieldseal/pkg/fieldcrypt"
	"github.com/saylorsolutions/fieldseal/pkg/keys"
	"github.com/saylorsolutions/fieldseal/pkg/legacy"
	"github.com/saylorsolutions/fieldseal/pkg/record"
)

var ErrInput = errors.New("invalid input")

// App runs record commands, reading JSON records and writing the results to Out.
// Input is either a single record object or an array of them, and the output has the same shape.
type App struct {
	Keys      keys.Provider
	Transform *record.Transform
	Log       zerolog.Logger
	Out       io.Writer
}

func New(provider keys.Provider, transform *record.Transform, log zerolog.Logger, out io.Writer) *App {
	return &App{
		Keys:      provider,
		Transform: transform,
		Log:       log,
		Out:       out,
	}
}

// Seal seals every record read from in.
func (a *App) Seal(ctx context.Context, in io.Reader) error {
	key, err := a.Keys.Key(ctx)
	if err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}
	return a.each(in, "seal", func(r *record.Record) (*record.Record, error) {
		return a.Transform.Seal(r, key)
	})
}

// Open opens every record read from in.
func (a *App) Open(ctx context.Context, in io.Reader) error {
	key, err := a.Keys.Key(ctx)
	if err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}
	return a.each(in, "open", func(r *record.Record) (*record.Record, error) {
		return a.Transform.Open(r, key)
	})
}

// Migrate decodes records written by the legacy helper with the session key suffix, then seals them.
func (a *App) Migrate(ctx context.Context, in io.Reader, legacySuffix string) error {
	legacyKey, err := legacy.SessionKey(legacySuffix)
	if err != nil {
		return err
	}
	key, err := a.Keys.Key(ctx)
	if err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}
	fields := a.Transform.Config().SensitiveFields
	return a.each(in, "migrate", func(r *record.Record) (*record.Record, error) {
		decoded, err := legacy.DecodeRecord(r, fields, legacyKey)
		if err != nil {
			return nil, err
		}
		return a.Transform.Seal(decoded, key)
	})
}

// each applies fn to every input record. Nothing is written unless every record succeeds.
func (a *App) each(in io.Reader, op string, fn func(*record.Record) (*record.Record, error)) error {
	records, many, err := readRecords(in)
	if err != nil {
		return err
	}
	results := make([]*record.Record, len(records))
	for i, r := range records {
		out, err := fn(r)
		if err != nil {
			a.Log.Error().Str("op", op).Int("record", i).Msg("Record failed")
			return fmt.Errorf("failed to %s record %d: %w", op, i, err)
		}
		results[i] = out
	}
	a.Log.Info().Str("op", op).Int("records", len(results)).Msg("Records transformed")
	if many {
		return writeJSON(a.Out, results)
	}
	return writeJSON(a.Out, results[0])
}

func readRecords(in io.Reader) ([]*record.Record, bool, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, false, fmt.Errorf("%w: no records", ErrInput)
	}
	if data[0] == '[' {
		var records []*record.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrInput, err)
		}
		for i, r := range records {
			if r == nil {
				return nil, false, fmt.Errorf("%w: record %d is null", ErrInput, i)
			}
		}
		return records, true, nil
	}
	r := record.New()
	if err := json.Unmarshal(data, r); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInput, err)
	}
	return []*record.Record{r}, false, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Hash writes the fingerprint of each text, one per line.
func Hash(out io.Writer, texts ...string) error {
	for _, text := range texts {
		if _, err := fmt.Fprintln(out, fieldcrypt.Hash(text)); err != nil {
			return err
		}
	}
	return nil
}

// KeyGen writes a new random key.
func KeyGen(out io.Writer) error {
	key, err := keys.Generate()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, key.Encode())
	return err
}

// Derive generates a key from pass and writes the descriptor needed to derive it again.
// The key itself isn't written.
func Derive(out io.Writer, pass keys.Passphrase, opts ...keys.GeneratorOpt) error {
	gen, err := keys.NewKeyGenerator(opts...)
	if err != nil {
		return err
	}
	_, desc, err := gen.GenerateKey(pass)
	if err != nil {
		return err
	}
	text, err := desc.Text()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, text)
	return err
}
