package capability

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chalc/internal/challenge"
	ncerr "chalc/internal/errors"
	"chalc/internal/session"
)

const (
	// linesBeforeChallenge counts the lines read after the greeting;
	// the last of them is the challenge.
	linesBeforeChallenge = 3
	// linesBeforeVerdict counts the lines read after the answer; the
	// last of them is the verdict.
	linesBeforeVerdict = 2
)

// Result records everything the peer said during one exchange.
type Result struct {
	SessionID string
	Greeting  string
	Challenge string
	Operands  challenge.Operands
	Answer    string
	Verdict   string
	// Skipped holds the lines that were read but not interpreted, in
	// arrival order.
	Skipped []string
}

// Exchange identifies itself, answers the server's arithmetic
// challenge and prints the greeting and the verdict.
type Exchange struct {
	// Identifier is sent verbatim as the first line.
	Identifier string
	// Format is the challenge layout; the zero value means
	// challenge.DefaultFormat.
	Format challenge.Format
	// OnResult, if set, receives the result of a completed exchange.
	OnResult func(*Result)
}

// Handle runs the exchange and hands the result to OnResult.
func (e *Exchange) Handle(ctx context.Context, sess *session.Session) error {
	res, err := e.Do(ctx, sess)
	if err != nil {
		return err
	}
	if e.OnResult != nil {
		e.OnResult(res)
	}
	return nil
}

// Do performs the line exchange on sess:
//
//	-> identifier
//	<- greeting            (printed)
//	<- line, line
//	<- challenge           "iii jjj kkk"
//	-> ((i+j)*k)-i
//	<- line
//	<- verdict             (printed)
//
// The session is left open; closing it is the caller's job.
func (e *Exchange) Do(ctx context.Context, sess *session.Session) (*Result, error) {
	log := sess.Logger
	sess.Metrics.ExchangeStarted()
	start := time.Now()

	res := &Result{SessionID: sess.ID}

	fail := func(err error) (*Result, error) {
		// A closed socket after cancellation reads better as the
		// cancellation itself.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		sess.Metrics.RecordError(err.Error())
		return res, err
	}

	// 1. identify
	if e.Identifier == "" || strings.ContainsAny(e.Identifier, "\r\n") {
		return fail(errBadIdentifier)
	}
	log.Verbose("sending identifier")
	if err := sess.WriteLine(e.Identifier); err != nil {
		return fail(err)
	}

	// 2. greeting
	greeting, err := sess.ReadLine()
	if err != nil {
		return fail(err)
	}
	res.Greeting = greeting
	if err := sess.Print(greeting); err != nil {
		return fail(fmt.Errorf("print greeting: %w", err))
	}

	// 3. lines up to and including the challenge
	line, err := e.readSkipping(sess, res, linesBeforeChallenge)
	if err != nil {
		return fail(err)
	}
	res.Challenge = line

	// 4. solve
	format := e.Format
	if format == (challenge.Format{}) {
		format = challenge.DefaultFormat
	}
	ops, err := format.Parse(line)
	if err != nil {
		return fail(ncerr.Protocol("challenge", line, err))
	}
	res.Operands = ops
	res.Answer = strconv.Itoa(ops.Answer())
	log.Verbose("challenge %q: %s = %s", line, ops, res.Answer)

	// 5. answer
	if err := sess.WriteLine(res.Answer); err != nil {
		return fail(err)
	}

	// 6. verdict
	verdict, err := e.readSkipping(sess, res, linesBeforeVerdict)
	if err != nil {
		return fail(err)
	}
	res.Verdict = verdict
	if err := sess.Print(verdict); err != nil {
		return fail(fmt.Errorf("print verdict: %w", err))
	}

	elapsed := time.Since(start)
	sess.Metrics.ExchangeDone(elapsed)
	log.Verbose("exchange done in %s", elapsed.Truncate(time.Millisecond))
	return res, nil
}

// readSkipping reads n lines and returns the last one.  The others are
// kept in res.Skipped.
func (e *Exchange) readSkipping(sess *session.Session, res *Result, n int) (string, error) {
	var line string
	for i := 0; i < n; i++ {
		if i > 0 {
			res.Skipped = append(res.Skipped, line)
			sess.Logger.Debug("skipped %q", line)
		}
		var err error
		line, err = sess.ReadLine()
		if err != nil {
			return "", err
		}
	}
	return line, nil
}

// errBadIdentifier guards the first line: it must be non-empty and
// must not contain a line terminator of its own.
var errBadIdentifier = errors.New("identifier must be a single non-empty line")
