package intcode

import (
	"fmt"
	"strings"
)

type logging struct {
	logfn func(mess string, args ...interface{})

	prefix    string
	markWidth int
}

func (log *logging) setLogName(name string) {
	if name == "" {
		log.prefix = ""
	} else {
		log.prefix = name + ": "
	}
}

// logf logs a message after a mark that classifies it; marks are padded to a
// common width by repeating their first rune.
func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		for _, r := range mark {
			mark = strings.Repeat(string(r), n) + mark
			break
		}
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v%v %v", log.prefix, mark, mess)
}
