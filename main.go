package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/vilshansen/ecap-go/batch"
	"github.com/vilshansen/ecap-go/config"
	"github.com/vilshansen/ecap-go/constants"
	"github.com/vilshansen/ecap-go/cryptoutils"
	"github.com/vilshansen/ecap-go/ecap"
	"github.com/vilshansen/ecap-go/logging"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Print(constants.HelpText)
		os.Exit(1)
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal fejl: %v\n", r)
			os.Exit(1)
		}
	}()

	args, err := parseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fejl ved hentning af parametre: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(args.logFile)

	tunables, err := config.Load(args.configFile)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}

	opts := []ecap.Option{
		ecap.WithMaxPixels(tunables.MaxPixels),
		ecap.WithScryptBudget(tunables.ScryptBudget),
		ecap.WithBitsPerChannel(tunables.BitsPerChannel),
	}

	if args.hide {
		err = runHide(args, opts, logger)
	} else {
		err = runReveal(args, opts, logger)
	}
	if err != nil {
		logger.Error().Err(err).Msg("operation failed")
		os.Exit(1)
	}
}

type cliArgs struct {
	hide, reveal          bool
	carrier, message, out string
	password, configFile  string
	logFile               string
	poolSize              int
}

func parseArgs() (cliArgs, error) {
	var a cliArgs
	hideFlag := flag.Bool("hide", false, "Hide a message inside a carrier file")
	revealFlag := flag.Bool("reveal", false, "Reveal a message hidden inside a carrier file")
	carrierFlag := flag.String("carrier", "", "Carrier file, or a glob pattern for -hide batch mode")
	messageFlag := flag.String("message", "", "File containing the plaintext to hide (-hide only)")
	outFlag := flag.String("out", "", "Destination file, or destination directory in batch mode")
	passwordFlag := flag.String("p", "", "Password (optional; prompted for interactively if omitted)")
	configFlag := flag.String("config", "", "Path to a config file (YAML/TOML/JSON) overriding tunable defaults")
	logFlag := flag.String("logfile", "", "Path to a rotated log file")
	poolFlag := flag.Int("pool", 4, "Worker pool size for -hide batch mode")
	flag.Parse()

	if (*hideFlag && *revealFlag) || (!*hideFlag && !*revealFlag) {
		return a, fmt.Errorf("must specify either -hide or -reveal, but not both")
	}
	if *carrierFlag == "" || *outFlag == "" {
		return a, fmt.Errorf("-carrier and -out must be specified")
	}
	if *hideFlag && *messageFlag == "" {
		return a, fmt.Errorf("-message must be specified with -hide")
	}

	a.hide = *hideFlag
	a.reveal = *revealFlag
	a.carrier = *carrierFlag
	a.message = *messageFlag
	a.out = *outFlag
	a.password = *passwordFlag
	a.configFile = *configFlag
	a.logFile = *logFlag
	a.poolSize = *poolFlag
	return a, nil
}

// resolvePassword returns the -p flag's value if given, otherwise
// prompts interactively with echo disabled, as the teacher's
// decryptFile does with term.ReadPassword.
func resolvePassword(flagValue string) ([]byte, error) {
	if flagValue != "" {
		return []byte(flagValue), nil
	}
	fmt.Print("Adgangskode: ")
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return bytePassword, nil
}

func isGlobPattern(s string) bool {
	return strings.ContainsAny(s, "*?[]")
}

func runHide(a cliArgs, opts []ecap.Option, logger zerolog.Logger) error {
	password, err := resolvePassword(a.password)
	if err != nil {
		return err
	}
	defer cryptoutils.ZeroBytes(password)

	plaintext, err := os.ReadFile(a.message)
	if err != nil {
		return fmt.Errorf("failed to read message file: %w", err)
	}

	if isGlobPattern(a.carrier) {
		logger.Info().Str("pattern", a.carrier).Int("pool", a.poolSize).Msg("starting batch hide")
		results, err := batch.HideAll(a.carrier, a.out, plaintext, password, a.poolSize, opts...)
		if err != nil {
			return err
		}
		failures := 0
		for _, r := range results {
			if r.Err != nil {
				failures++
				logger.Error().Str("carrier", r.CarrierPath).Err(r.Err).Msg("hide failed")
				continue
			}
			logger.Info().Str("carrier", r.CarrierPath).Str("out", r.OutPath).Msg("hide succeeded")
		}
		if failures > 0 {
			return fmt.Errorf("%d of %d carriers failed", failures, len(results))
		}
		return nil
	}

	carrier, err := os.ReadFile(a.carrier)
	if err != nil {
		return fmt.Errorf("failed to read carrier: %w", err)
	}

	logger.Info().Str("carrier", a.carrier).Str("out", a.out).Msg("hiding message")
	out, err := ecap.Encode(carrier, filepath.Ext(a.carrier), plaintext, password, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.out, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info().Msg("hide complete")
	return nil
}

func runReveal(a cliArgs, opts []ecap.Option, logger zerolog.Logger) error {
	password, err := resolvePassword(a.password)
	if err != nil {
		return err
	}
	defer cryptoutils.ZeroBytes(password)

	carrier, err := os.ReadFile(a.carrier)
	if err != nil {
		return fmt.Errorf("failed to read carrier: %w", err)
	}

	logger.Info().Str("carrier", a.carrier).Msg("revealing message")
	plaintext, err := ecap.Decode(carrier, password, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.out, plaintext, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info().Msg("reveal complete")
	return nil
}
