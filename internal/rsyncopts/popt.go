package rsyncopts

import (
	"fmt"
	"strconv"
	"strings"
)

// poptArgType mirrors the subset of popt(3)'s POPT_ARG_* argInfo constants
// that rsync's own option table relies on.
type poptArgType int

const (
	POPT_ARG_NONE poptArgType = iota
	POPT_ARG_STRING
	POPT_ARG_INT
	POPT_ARG_VAL
	POPT_BIT_SET
)

// poptOption is one row of an option table, built positionally (as rsync's
// own popt tables are): {longName, shortName, argInfo, arg, val}.
type poptOption struct {
	longName  string
	shortName string
	argInfo   poptArgType
	arg       any
	val       int
}

type PoptErrno int

const (
	POPT_ERROR_BADOPT PoptErrno = iota
	POPT_ERROR_NOARG
	POPT_ERROR_BADNUMBER
)

// PoptError is returned by Context.poptGetNextOpt when an argument cannot
// be parsed against the active option table.
type PoptError struct {
	Option string
	Errno  PoptErrno

	// DaemonMode is set by ParseArguments when the error occurred while
	// re-parsing argv against the daemon option table (triggered by
	// --daemon), so callers can tell client-mode and daemon-mode option
	// errors apart.
	DaemonMode bool
}

func (e *PoptError) Error() string {
	switch e.Errno {
	case POPT_ERROR_NOARG:
		return fmt.Sprintf("option %q requires an argument", e.Option)
	case POPT_ERROR_BADNUMBER:
		return fmt.Sprintf("option %q: invalid numeric argument", e.Option)
	default:
		return fmt.Sprintf("unknown option %q", e.Option)
	}
}

// Context drives one left-to-right scan of args against table, in the
// manner of poptGetContext/poptGetNextOpt. Unlike full popt, it does not
// support option abbreviation or aliases (see the package doc comment).
type Context struct {
	Options       *Options
	RemainingArgs []string

	table []poptOption
	args  []string
	pos   int

	optArg string

	pending    string // unconsumed chars of a clustered short-option token, e.g. "v" left over from "-av"
	pendingTok string // the original token pending belongs to, for error messages
}

// poptGetOptArg returns the string argument consumed by the most recent
// POPT_ARG_STRING/POPT_ARG_INT option whose arg target was nil (so the
// caller's switch needs to read it back, e.g. --info/--debug).
func (pc *Context) poptGetOptArg() string {
	return pc.optArg
}

func (pc *Context) findLong(name string) (poptOption, bool) {
	for _, o := range pc.table {
		if o.longName == name {
			return o, true
		}
	}
	return poptOption{}, false
}

func (pc *Context) findShort(ch byte) (poptOption, bool) {
	for _, o := range pc.table {
		if len(o.shortName) == 1 && o.shortName[0] == ch {
			return o, true
		}
	}
	return poptOption{}, false
}

// apply stores the option's value (if it carries no inline value, rawValue
// is "consumed" lazily by the caller first). It returns the opt code to
// hand back to ParseArguments, or 0 when the option was fully satisfied
// by storing into its arg pointer (no val code to dispatch on).
func (pc *Context) apply(o poptOption, rawValue string, hadValue bool, tokenForErr string) (opt int, err error) {
	switch o.argInfo {
	case POPT_ARG_STRING, POPT_ARG_INT:
		if !hadValue {
			return 0, &PoptError{Option: tokenForErr, Errno: POPT_ERROR_NOARG}
		}
		pc.optArg = rawValue
		if o.argInfo == POPT_ARG_INT {
			n, convErr := strconv.Atoi(rawValue)
			if convErr != nil {
				return 0, &PoptError{Option: tokenForErr, Errno: POPT_ERROR_BADNUMBER}
			}
			if p, ok := o.arg.(*int); ok && p != nil {
				*p = n
				return 0, nil
			}
		} else {
			if p, ok := o.arg.(*string); ok && p != nil {
				*p = rawValue
				return 0, nil
			}
		}
		return o.val, nil

	case POPT_ARG_VAL:
		if p, ok := o.arg.(*int); ok && p != nil {
			*p = o.val
			return 0, nil
		}
		return o.val, nil

	case POPT_BIT_SET:
		if p, ok := o.arg.(*int); ok && p != nil {
			*p |= o.val
			return 0, nil
		}
		return o.val, nil

	default: // POPT_ARG_NONE
		if p, ok := o.arg.(*int); ok && p != nil {
			*p++
			return 0, nil
		}
		return o.val, nil
	}
}

// poptGetNextOpt returns the val of the next recognized option, 0 when the
// option was fully handled by storing into its arg pointer (callers should
// simply loop again; ParseArguments' switch never has a case 0), or -1
// once every remaining token has been classified as a non-option argument
// (collected into pc.RemainingArgs).
func (pc *Context) poptGetNextOpt() (int, error) {
	for {
		if pc.pending != "" {
			ch := pc.pending[0]
			rest := pc.pending[1:]
			o, ok := pc.findShort(ch)
			if !ok {
				return 0, &PoptError{Option: "-" + string(ch), Errno: POPT_ERROR_BADOPT}
			}
			tok := "-" + string(ch)
			switch o.argInfo {
			case POPT_ARG_STRING, POPT_ARG_INT:
				if rest != "" {
					pc.pending = ""
					return pc.apply(o, rest, true, tok)
				}
				pc.pending = ""
				if pc.pos >= len(pc.args) {
					return 0, &PoptError{Option: tok, Errno: POPT_ERROR_NOARG}
				}
				v := pc.args[pc.pos]
				pc.pos++
				opt, err := pc.apply(o, v, true, tok)
				if err != nil || opt != 0 {
					return opt, err
				}
				continue
			default:
				pc.pending = rest
				opt, err := pc.apply(o, "", false, tok)
				if err != nil || opt != 0 {
					return opt, err
				}
				continue
			}
		}

		if pc.pos >= len(pc.args) {
			return -1, nil
		}
		tok := pc.args[pc.pos]

		if tok == "--" {
			pc.pos++
			pc.RemainingArgs = append(pc.RemainingArgs, pc.args[pc.pos:]...)
			pc.pos = len(pc.args)
			return -1, nil
		}

		if tok == "" || tok[0] != '-' || tok == "-" {
			pc.RemainingArgs = append(pc.RemainingArgs, pc.args[pc.pos:]...)
			pc.pos = len(pc.args)
			return -1, nil
		}

		if strings.HasPrefix(tok, "--") {
			pc.pos++
			name := tok[2:]
			var inline string
			hasInline := false
			if idx := strings.IndexByte(name, '='); idx >= 0 {
				inline = name[idx+1:]
				name = name[:idx]
				hasInline = true
			}
			o, ok := pc.findLong(name)
			if !ok {
				return 0, &PoptError{Option: tok, Errno: POPT_ERROR_BADOPT}
			}
			switch o.argInfo {
			case POPT_ARG_STRING, POPT_ARG_INT:
				if hasInline {
					opt, err := pc.apply(o, inline, true, tok)
					if err != nil || opt != 0 {
						return opt, err
					}
					continue
				}
				if pc.pos >= len(pc.args) {
					return 0, &PoptError{Option: tok, Errno: POPT_ERROR_NOARG}
				}
				v := pc.args[pc.pos]
				pc.pos++
				opt, err := pc.apply(o, v, true, tok)
				if err != nil || opt != 0 {
					return opt, err
				}
				continue
			default:
				opt, err := pc.apply(o, "", false, tok)
				if err != nil || opt != 0 {
					return opt, err
				}
				continue
			}
		}

		// Clustered short options, e.g. "-av" == "-a -v".
		pc.pos++
		pc.pending = tok[1:]
		pc.pendingTok = tok
	}
}
