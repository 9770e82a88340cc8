// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/memogo/internal/cacheutil"
)

// NewDebugFlag constructs the root --debug flag. It is read from MEMO_DEBUG or
// the "debug" key of the config file.
func NewDebugFlag(cfgSource string) *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "debug",
		Aliases: []string{"d"},
		Usage:   "log cache load, hit/miss and save timing",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("MEMO_DEBUG"),
			yaml.YAML("debug", altsrc.StringSourcer(cfgSource)),
		),
		HideDefault: true,
	}
}

// NewStoreFlag constructs the --store flag naming the store file to operate
// on. Bare names are resolved inside the cache directory.
func NewStoreFlag(ns string, cfgSource string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "store",
		Aliases: []string{"s"},
		Usage:   "store file to use",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("MEMO_STORE"),
		),
		Value: cacheutil.StorePath(),
	}
	return NameSpacedValueChainFlagFromConfigFile(ns, cfgSource, flag)
}

// NewOutputFlags constructs the flags shared by commands that list entries.
func NewOutputFlags(ns string, cfgSource string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"color", altsrc.StringSourcer(cfgSource)),
				yaml.YAML("color", altsrc.StringSourcer(cfgSource)),
			),
			Value: term.IsTerminal(int(os.Stdout.Fd())),
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		NameSpacedValueChainFlagFromConfigFile(ns, cfgSource, &cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		}),
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(cfgSource)),
				yaml.YAML("titles", altsrc.StringSourcer(cfgSource)),
			),
			Value: true,
		},
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}
