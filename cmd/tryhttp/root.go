package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vthiery/tryhttp"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "tryhttp",
		Short:         "run HTTP calls and report failures in a uniform shape",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(getCmd())
	return root
}

type getFlags struct {
	output  string
	timeout time.Duration
	verbose bool
}

func getCmd() *cobra.Command {
	var flags getFlags
	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "GET a URL, printing the body or the normalized failure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", outputJSON, "failure encoding: json or yaml")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "client timeout")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log failed exchanges to stderr")
	return cmd
}

func runGet(cmd *cobra.Command, url string, flags getFlags) error {
	if flags.output != outputJSON && flags.output != outputYAML {
		return fmt.Errorf("unknown output %q", flags.output)
	}

	level := zerolog.WarnLevel
	if flags.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	client := tryhttp.NewClient(
		tryhttp.WithHTTPClient(&http.Client{Timeout: flags.timeout}),
		tryhttp.WithLogger(logger),
	)

	res, err := tryhttp.Wrap(func() (*http.Response, error) {
		return client.Get(cmd.Context(), url, nil)
	})
	if err != nil {
		var e *tryhttp.Error
		if !errors.As(err, &e) {
			return err
		}
		if encErr := encodeError(cmd.OutOrStdout(), flags.output, e); encErr != nil {
			return encErr
		}
		return err
	}
	defer res.Body.Close() //nolint:errcheck

	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", res.Status)
	_, err = io.Copy(cmd.OutOrStdout(), res.Body)
	return err
}

func encodeError(w io.Writer, output string, e *tryhttp.Error) error {
	if output == outputYAML {
		b, err := yaml.Marshal(e)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
