package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/fieldseal/cmd/fieldseal/internal/app"
	"github.com/saylorsolutions/fieldseal/cmd/internal"
	"github.com/saylorsolutions/fieldseal/pkg/keys"
	"github.com/saylorsolutions/fieldseal/pkg/record"
	flag "github.com/spf13/pflag"
)

var version = "dev"

// failure pairs an error with the message it's reported under.
type failure struct {
	msg string
	err error
}

func (f *failure) Error() string {
	return f.msg + ": " + f.err.Error()
}

func (f *failure) Unwrap() error {
	return f.err
}

func fail(msg string, err error) error {
	return &failure{msg: msg, err: err}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		var f *failure
		if errors.As(err, &f) {
			internal.Fail(f.msg, f.err)
		}
		internal.Fatal("%v", err)
	}
}

func run(argv []string) error {
	cfg, err := app.LoadConfig(nil)
	if err != nil {
		return fail("Failed to read environment", err)
	}

	var (
		helpFlag     bool
		argonFlag    bool
		legacySuffix string
	)
	flags := flag.NewFlagSet("fieldseal", flag.ContinueOnError)
	flags.BoolVarP(&helpFlag, "help", "h", false, "Prints this usage information.")
	flags.BoolVar(&argonFlag, "argon2id", false, "Use argon2id instead of scrypt with 'derive'.")
	flags.StringVar(&legacySuffix, "legacy-suffix", "", "The six digit key suffix of the legacy session that wrote the records, used with 'migrate'.")
	cfg.BindFlags(flags)
	flags.Usage = func() {
		fmt.Printf(`
fieldseal seals and opens the sensitive fields of JSON records with authenticated encryption.
Records are read from FILE, or stdin if FILE is omitted or "-", and written to stdout.
Input may be a single record object or an array of them.

USAGE:  fieldseal COMMAND [ARGS]

COMMANDS:
    keygen                Prints a new random key.
    derive                Prints a KDF descriptor for the passphrase in %[1]sPASSPHRASE.
    seal [FILE]           Seals the profile's fields of each record.
    open [FILE]           Opens each sealed record.
    migrate [FILE]        Decodes records written by the legacy FinanceFlow helper, and seals them.
    hash TEXT...          Prints the fingerprint of each TEXT. This is not a security primitive.
    version               Prints the version of fieldseal.

KEYS:
    The first of --key, --key-file, or %[1]sPASSPHRASE with --descriptor is used.

FLAGS:
%[2]s`, app.EnvPrefix, flags.FlagUsages())
	}
	if len(argv) == 0 {
		flags.Usage()
		return nil
	}
	if err := flags.Parse(argv); err != nil {
		flags.Usage()
		return fmt.Errorf("error parsing flags: %w", err)
	}
	if helpFlag || flags.NArg() == 0 {
		flags.Usage()
		return nil
	}

	logger, err := internal.NewLogger("fieldseal", cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := flags.Args()[1:]
	switch cmd := flags.Arg(0); cmd {
	case "version":
		fmt.Println(version)
	case "keygen":
		if err := app.KeyGen(os.Stdout); err != nil {
			return fail("Failed to generate key", err)
		}
	case "derive":
		if len(cfg.Passphrase) == 0 {
			return fmt.Errorf("set %sPASSPHRASE to derive a key", app.EnvPrefix)
		}
		var opts []keys.GeneratorOpt
		if argonFlag {
			opts = append(opts, keys.SetArgon2id())
		}
		if err := app.Derive(os.Stdout, keys.Passphrase(cfg.Passphrase), opts...); err != nil {
			return fail("Failed to derive key", err)
		}
	case "hash":
		if len(args) == 0 {
			return errors.New("missing required TEXT argument")
		}
		if err := app.Hash(os.Stdout, args...); err != nil {
			return fail("Failed to write hashes", err)
		}
	case "seal", "open", "migrate":
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		in, err := openInput(args)
		if err != nil {
			return err
		}
		defer func() {
			_ = in.Close()
		}()
		switch cmd {
		case "seal":
			err = a.Seal(ctx, in)
		case "open":
			err = a.Open(ctx, in)
		default:
			err = a.Migrate(ctx, in, legacySuffix)
		}
		if err != nil {
			return fail("Failed to "+cmd+" records", err)
		}
	default:
		flags.Usage()
		return fmt.Errorf("unknown command '%s'", cmd)
	}
	return nil
}

func newApp(cfg app.Config, logger zerolog.Logger) (*app.App, error) {
	provider, err := cfg.Provider()
	if err != nil {
		return nil, fail("Failed to select key", err)
	}
	recordCfg, err := cfg.RecordConfig()
	if err != nil {
		return nil, fail("Failed to load profile", err)
	}
	transform, err := record.NewTransform(recordCfg, record.WithLogger(logger))
	if err != nil {
		return nil, fail("Failed to configure transform", err)
	}
	return app.New(provider, transform, logger, os.Stdout), nil
}

func openInput(args []string) (io.ReadCloser, error) {
	switch len(args) {
	case 0:
		return io.NopCloser(os.Stdin), nil
	case 1:
		if args[0] == "-" {
			return io.NopCloser(os.Stdin), nil
		}
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fail("Failed to open input", err)
		}
		return f, nil
	default:
		return nil, errors.New("expected at most one FILE argument")
	}
}
