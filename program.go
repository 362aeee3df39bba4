package intcode

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Program is an intcode memory image, as read from program text.
type Program []int64

// String formats the program as comma-separated decimal integers.
func (prog Program) String() string {
	var sb strings.Builder
	for i, val := range prog {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(val, 10))
	}
	return sb.String()
}

// ParseProgram reads program text: comma-separated signed decimal integers.
// Whitespace around fields, including line breaks, is ignored.
func ParseProgram(r io.Reader) (Program, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 16*1024*1024)
	sc.Split(scanFields)
	var prog Program
	for sc.Scan() {
		field := strings.TrimSpace(sc.Text())
		val, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid program field #%d", len(prog))
		}
		prog = append(prog, val)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "program read failed")
	}
	return prog, nil
}

// ParseProgramString parses program text from a string.
func ParseProgramString(s string) (Program, error) {
	return ParseProgram(strings.NewReader(s))
}

// LoadProgramFile parses program text from the named file.
func LoadProgramFile(name string) (Program, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "program load failed")
	}
	defer f.Close()
	prog, err := ParseProgram(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%v", name)
	}
	return prog, nil
}

// scanFields splits on commas, dropping a trailing all-space field.
func scanFields(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexByte(data, ','); i >= 0 {
		return i + 1, data[:i], nil
	}
	if !atEOF {
		return 0, nil, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return len(data), nil, nil
	}
	return len(data), data, nil
}
