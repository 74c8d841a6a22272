// Package prompt reads configuration inputs that may come from a file or,
// when the path is "-", empty, or missing, interactively from the user.
package prompt

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadFileOrStdin returns the contents of path, or prompts for a single
// line on input when path is "-", empty, or does not exist.
func ReadFileOrStdin(input *bufio.Reader, output io.Writer, name, path string) ([]byte, error) {
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
		fmt.Fprintf(output, "%s not found\n", path)
	}
	fmt.Fprintf(output, "Paste the %s:\n", name)
	return ReadLine(input)
}

// ReadLine consumes one newline-terminated line and trims surrounding
// whitespace.
func ReadLine(input *bufio.Reader) ([]byte, error) {
	line, err := input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return nil, err
	}
	return []byte(strings.TrimSpace(line)), nil
}

// ReadHexMessage prompts for a hex-encoded message and decodes it.
func ReadHexMessage(input *bufio.Reader, output io.Writer) ([]byte, error) {
	fmt.Fprintln(output, "The message to be signed (hex encoded):")
	line, err := ReadLine(input)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(string(line))
}

// ReadMessages loads every message to sign. Each path can be a file with
// the raw message bytes, or "-"/"" to read a hex-encoded line. With no
// paths at all, a single hex-encoded message is read.
func ReadMessages(paths []string, input *bufio.Reader, output io.Writer) ([][]byte, error) {
	if len(paths) == 0 {
		msg, err := ReadHexMessage(input, output)
		if err != nil {
			return nil, err
		}
		return [][]byte{msg}, nil
	}
	messages := make([][]byte, 0, len(paths))
	for _, path := range paths {
		if path == "" || path == "-" {
			msg, err := ReadHexMessage(input, output)
			if err != nil {
				return nil, err
			}
			messages = append(messages, msg)
			continue
		}
		fmt.Fprintf(output, "Reading message from %s...\n", path)
		msg, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
