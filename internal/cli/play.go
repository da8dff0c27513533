package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/quiz-club/backend/internal/apiclient"
	"github.com/quiz-club/backend/internal/kv"
	"github.com/quiz-club/backend/internal/quiz"
	"github.com/quiz-club/backend/internal/quizset"
)

const fetchTimeout = 30 * time.Second

// defaultStatePath is where progress lives between runs. An empty result
// keeps progress in memory only.
func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".quizclub", "progress.db")
}

type playOptions struct {
	file    string
	server  string
	lecture int64
	state   string
	policy  string
	seed    uint64
}

// runPlay builds the handler for the play command.
func runPlay(cmd *Command) func(args []string, streams IO) int {
	return func(args []string, streams IO) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, streams.Out)
			return ExitOK
		}

		var opts playOptions
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(streams.Err)
		flags.StringVar(&opts.file, "file", "", "Quiz set file (.json, .yaml)")
		flags.StringVar(&opts.server, "server", "", "Quiz server base URL")
		flags.Int64Var(&opts.lecture, "lecture", 0, "Lecture id to fetch from the server")
		flags.StringVar(&opts.state, "state", defaultStatePath(), "Progress database path (empty keeps progress in memory)")
		flags.StringVar(&opts.policy, "policy", quiz.FirstAnswerWins.String(), "Pick policy: first-answer-wins or change-until-navigate")
		flags.Uint64Var(&opts.seed, "seed", 0, "Shuffle seed (0 picks one from the clock)")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, streams.Out)
				return ExitOK
			}
			fmt.Fprintf(streams.Err, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, streams.Err)
			return ExitUsage
		}
		if flags.NArg() > 0 {
			fmt.Fprintf(streams.Err, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, streams.Err)
			return ExitUsage
		}
		if (opts.file == "") == (opts.server == "") {
			fmt.Fprintln(streams.Err, "exactly one of --file or --server is required")
			printCommandUsage(cmd, streams.Err)
			return ExitUsage
		}
		if opts.server != "" && opts.lecture <= 0 {
			fmt.Fprintln(streams.Err, "--lecture is required with --server")
			printCommandUsage(cmd, streams.Err)
			return ExitUsage
		}

		if err := play(opts, streams); err != nil {
			fmt.Fprintf(streams.Err, "play failed: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}

func play(opts playOptions, streams IO) error {
	ctx := context.Background()

	var store quiz.KV = kv.NewMemory()
	if opts.state != "" {
		db, err := kv.OpenSQLite(ctx, opts.state)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	rng := quiz.NewRandFromTime()
	if opts.seed != 0 {
		rng = quiz.NewRand(opts.seed)
	}

	cfg := quiz.SessionConfig{
		KV:     store,
		Key:    quiz.DefaultStorageKey,
		Rand:   rng,
		Policy: quiz.ParsePickPolicy(opts.policy),
	}

	if opts.file != "" {
		set, err := quizset.Load(opts.file)
		if err != nil {
			return err
		}
		session := quiz.NewSession(cfg)
		session.LoadSet(set)
		return newPlayer(session, streams.Out).loop(streams.In)
	}

	client, err := apiclient.New(opts.server)
	if err != nil {
		return err
	}
	cfg.Fetcher = client
	session := quiz.NewSession(cfg)

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	if err := session.SelectLecture(fetchCtx, opts.lecture); err != nil {
		return err
	}
	return newPlayer(session, streams.Out).loop(streams.In)
}

// player drives a session from line-oriented commands.
type player struct {
	session *quiz.Session
	out     io.Writer
}

func newPlayer(s *quiz.Session, out io.Writer) *player {
	return &player{session: s, out: out}
}

func (p *player) loop(in io.Reader) error {
	p.show()
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(p.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(p.out)
			return scanner.Err()
		}
		if quit := p.handle(scanner.Text()); quit {
			return nil
		}
	}
}

// handle runs one command line and reports whether the player should stop.
func (p *player) handle(line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false
	}

	// A bare number picks that choice.
	if n, err := strconv.Atoi(fields[0]); err == nil && len(fields) == 1 {
		p.pick(n)
		return false
	}

	switch fields[0] {
	case "next", "n":
		p.session.Advance()
		p.show()
	case "prev", "p", "back":
		p.session.Retreat()
		p.show()
	case "jump", "j":
		n, ok := p.argument(fields)
		if !ok {
			return false
		}
		p.session.JumpTo(n - 1)
		p.show()
	case "pick":
		n, ok := p.argument(fields)
		if !ok {
			return false
		}
		p.pick(n)
	case "reset":
		p.session.Reset()
		fmt.Fprintln(p.out, "Progress cleared.")
		p.show()
	case "shuffle":
		p.session.Reshuffle()
		fmt.Fprintln(p.out, "New order drawn.")
		p.show()
	case "score":
		p.score()
	case "review":
		p.review()
	case "help", "?":
		p.help()
	case "quit", "q", "exit":
		return true
	default:
		fmt.Fprintf(p.out, "Unknown command %q. Type help for commands.\n", fields[0])
	}
	return false
}

func (p *player) argument(fields []string) (int, bool) {
	if len(fields) != 2 {
		fmt.Fprintf(p.out, "Usage: %s N\n", fields[0])
		return 0, false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		fmt.Fprintf(p.out, "%q is not a number.\n", fields[1])
		return 0, false
	}
	return n, true
}

func (p *player) pick(n int) {
	q, ok := p.session.Current()
	if !ok {
		fmt.Fprintln(p.out, "No question to answer.")
		return
	}
	if n < 1 || n > len(q.Choices) {
		fmt.Fprintf(p.out, "Choose 1-%d.\n", len(q.Choices))
		return
	}
	if !p.session.PickCurrent(n - 1) {
		fmt.Fprintln(p.out, "Already answered.")
		return
	}
	p.feedback(q, n-1)
}

func (p *player) show() {
	sum := p.session.Summary()
	if sum.Phase == quiz.PhaseFinished {
		fmt.Fprintf(p.out, "Quiz finished: %d/%d correct.\n", sum.Score, sum.Total)
		fmt.Fprintln(p.out, "Type review to see every answer, prev to go back, or reset to start over.")
		return
	}
	q, ok := p.session.Current()
	if !ok {
		fmt.Fprintf(p.out, "%s has no questions.\n", titleOr(sum.Title))
		return
	}

	fmt.Fprintf(p.out, "\n[%d/%d] %s\n", sum.Position+1, sum.Total, titleOr(sum.Title))
	fmt.Fprintln(p.out, q.Prompt)
	for i, c := range q.Choices {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, c)
	}

	if pick, answered := p.session.State().Picks[string(q.ID)]; answered {
		p.feedback(q, pick)
	}
}

// feedback reports on a pick. Picks restored from storage are not trusted to
// fit the question.
func (p *player) feedback(q quiz.Question, pick int) {
	if pick < 0 || pick >= len(q.Choices) || q.Answer < 0 || q.Answer >= len(q.Choices) {
		fmt.Fprintf(p.out, "Answered with choice %d, which this question no longer has.\n", pick+1)
		return
	}
	if q.IsCorrect(pick) {
		fmt.Fprintf(p.out, "Correct: %d) %s\n", pick+1, q.Choices[pick])
	} else {
		fmt.Fprintf(p.out, "Incorrect: you chose %d), the answer is %d) %s\n", pick+1, q.Answer+1, q.Choices[q.Answer])
	}
	if pick < len(q.ChoiceExplanations) && q.ChoiceExplanations[pick] != "" {
		fmt.Fprintf(p.out, "  %s\n", q.ChoiceExplanations[pick])
	}
	if q.Explanation != "" {
		fmt.Fprintf(p.out, "  %s\n", q.Explanation)
	}
}

func (p *player) score() {
	sum := p.session.Summary()
	fmt.Fprintf(p.out, "Score %d/%d, answered %d/%d.\n", sum.Score, sum.Total, sum.Answered, sum.Total)
}

func (p *player) review() {
	for _, r := range p.session.Results() {
		mark := "-"
		switch {
		case r.Picked < 0:
			mark = " "
		case r.Correct:
			mark = "+"
		}
		fmt.Fprintf(p.out, "%s %2d. %s\n", mark, r.Position+1, r.Question.Prompt)
	}
	p.score()
}

func (p *player) help() {
	fmt.Fprintln(p.out, "Commands:")
	fmt.Fprintln(p.out, "  pick N | N   answer with choice N")
	fmt.Fprintln(p.out, "  next, prev   move between questions")
	fmt.Fprintln(p.out, "  jump N       go to question N")
	fmt.Fprintln(p.out, "  score        show the running score")
	fmt.Fprintln(p.out, "  review       list every question with its result")
	fmt.Fprintln(p.out, "  reset        clear answers and start over")
	fmt.Fprintln(p.out, "  shuffle      draw a new question order")
	fmt.Fprintln(p.out, "  quit")
}

func titleOr(title string) string {
	if title == "" {
		return "This quiz"
	}
	return title
}
