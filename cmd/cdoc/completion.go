// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"strings"
	"text/template"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/cdoc/internal/errors"
)

// globalFlagNames are completed before the command name.
var globalFlagNames = []string{"--version", "--config", "--json", "--no-color", "--quiet", "--verbose"}

// commandFlagNames lists the flags completed after each command.
var commandFlagNames = map[string][]string{
	"params": {"--json"},
	"doc":    {"--indent", "--anonymous", "--with-declaration"},
	"scan": {"--json", "--jsonl", "--comments", "--failed", "--strict", "--mode", "--workers",
		"--max-join-lines", "--exclude", "--since", "--metrics-addr", "--cache-dir", "--no-cache"},
	"init":  {"--force", "--cache", "--mode", "--anonymous", "--dir"},
	"serve": {"--addr", "--debug"},
	"cache": {"--clear", "--cache-dir"},
}

type completionCommand struct {
	Name, Summary string
}

// completionData feeds the shell templates.
type completionData struct {
	Commands []completionCommand
	Globals  string
	Flags    map[string]string
}

func newCompletionData() completionData {
	d := completionData{
		Globals:  strings.Join(globalFlagNames, " "),
		Flags:    make(map[string]string, len(commandFlagNames)),
	}
	for _, c := range commands {
		d.Commands = append(d.Commands, completionCommand{Name: c.name, Summary: c.summary})
	}
	for cmd, flags := range commandFlagNames {
		d.Flags[cmd] = strings.Join(flags, " ")
	}
	return d
}

var completionTemplates = map[string]*template.Template{
	"bash": template.Must(template.New("bash").Parse(`#!/bin/bash

# Bash completion script for cdoc
# Installation:
#   source <(cdoc completion bash)

_cdoc_completion() {
    local cur cmd
    cur="${COMP_WORDS[COMP_CWORD]}"

    if [ $COMP_CWORD -eq 1 ]; then
        if [[ ${cur} == -* ]]; then
            COMPREPLY=( $(compgen -W "{{.Globals}}" -- ${cur}) )
        else
            COMPREPLY=( $(compgen -W "{{range $i, $c := .Commands}}{{if $i}} {{end}}{{$c.Name}}{{end}}" -- ${cur}) )
        fi
        return 0
    fi

    cmd="${COMP_WORDS[1]}"
    case "${cmd}" in
{{- range $cmd, $flags := .Flags}}
        {{$cmd}})
            COMPREPLY=( $(compgen -W "{{$flags}}" -- ${cur}) )
            ;;
{{- end}}
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            ;;
    esac
}

complete -o default -F _cdoc_completion cdoc
`)),
	"zsh": template.Must(template.New("zsh").Parse(`#compdef cdoc

# Zsh completion script for cdoc
# Installation:
#   cdoc completion zsh > "${fpath[1]}/_cdoc"

_cdoc() {
    local -a commands
    commands=(
{{- range .Commands}}
        '{{.Name}}:{{.Summary}}'
{{- end}}
    )

    _arguments -C \
        '(- *)--version[Show version and exit]' \
        '--config[Path to .cdoc.yaml]:config file:_files -g "*.yaml"' \
        '--json[Machine-readable JSON output]' \
        '--no-color[Disable colored output]' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
{{- range $cmd, $flags := .Flags}}
                {{$cmd}})
                    compadd -- {{$flags}}
                    ;;
{{- end}}
                completion)
                    compadd -- bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_cdoc
`)),
	"fish": template.Must(template.New("fish").Parse(`# Fish completion script for cdoc
# Installation:
#   cdoc completion fish > ~/.config/fish/completions/cdoc.fish
{{range .Commands}}
complete -c cdoc -f -n "__fish_use_subcommand" -a "{{.Name}}" -d "{{.Summary}}"
{{- end}}
{{range $cmd, $flags := .Flags}}
complete -c cdoc -n "__fish_seen_subcommand_from {{$cmd}}" -a "{{$flags}}"
{{- end}}
complete -c cdoc -n "__fish_seen_subcommand_from completion" -f -a "bash zsh fish"
`)),
}

// runCompletion executes the 'completion' CLI command, writing a completion
// script for bash, zsh or fish to stdout.
//
// Examples:
//
//	source <(cdoc completion bash)
//	cdoc completion zsh > "${fpath[1]}/_cdoc"
//	cdoc completion fish | source
func runCompletion(args []string, _ GlobalFlags, s streams) error {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(s.err, "Usage: cdoc completion <bash|zsh|fish>\n")
	}
	if done, err := parseFlags(fs, args, s); done {
		return err
	}

	if fs.NArg() != 1 {
		return errors.NewInputError(
			"Invalid arguments",
			"The completion command requires exactly one argument: the shell name",
			"Run 'cdoc completion bash', 'cdoc completion zsh', or 'cdoc completion fish'",
		)
	}
	tmpl, ok := completionTemplates[fs.Arg(0)]
	if !ok {
		return errors.NewInputError(
			"Unsupported shell",
			fmt.Sprintf("Shell '%s' is not supported. Valid options: bash, zsh, fish", fs.Arg(0)),
			"Run 'cdoc completion bash', 'cdoc completion zsh', or 'cdoc completion fish'",
		)
	}
	if err := tmpl.Execute(s.out, newCompletionData()); err != nil {
		return errors.NewInternalError("Cannot render completion script", err.Error(), "", err)
	}
	return nil
}
