package view

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/blockfall/internal/model"
)

// Page wraps body in a complete HTML document. When events is set the page
// subscribes to that SSE stream.
func Page(title, events string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(title)
		h.raw(` - blockfall</title><link rel="stylesheet" href="/static/blockfall.css">`)
		h.raw(`<script src="https://unpkg.com/htmx.org@2.0.4"></script><script src="https://unpkg.com/htmx-ext-sse@2.2.2/sse.js"></script></head><body>`)
		if events != "" {
			h.raw(`<main hx-ext="sse" sse-connect="`, templ.EscapeString(events), `">`)
		} else {
			h.raw(`<main>`)
		}
		h.raw(`<h1>`)
		h.text(title)
		h.raw(`</h1>`)
		h.render(ctx, body)
		h.raw(`</main></body></html>`)
	})
}

// Game renders the spectator panel of a session
func Game(v model.GameView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section class="game" id="game-`, templ.EscapeString(string(v.ID)), `" data-status="`, string(v.Status), `">`)
		h.raw(`<div id="`, templ.EscapeString(BoardID(v.ID)), `">`)
		h.render(ctx, Board(v.ID, v.State))
		h.raw(`</div><aside>`)
		h.raw(`<h2>Hold</h2>`)
		var held []model.Piece
		if v.Board.Held != nil {
			held = []model.Piece{*v.Board.Held}
		}
		h.render(ctx, Pieces("hold", held))
		h.raw(`<h2>Next</h2>`)
		h.render(ctx, Pieces("preview", v.Preview))
		h.render(ctx, Stats(v))
		h.raw(`</aside></section>`)
	})
}

// StatsID is the element id of a session's stats list
func StatsID(id model.GameID) string {
	return "stats-" + string(id)
}

// Stats renders the running counters of a session
func Stats(v model.GameView) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<dl class="stats" id="`, templ.EscapeString(StatsID(v.ID)), `">`)
		stat(h, "mode", string(v.Mode))
		stat(h, "status", string(v.Status))
		if v.Outcome != "" {
			stat(h, "outcome", string(v.Outcome))
		}
		stat(h, "points", strconv.Itoa(v.Points))
		stat(h, "level", strconv.Itoa(v.Level))
		stat(h, "lines", strconv.Itoa(v.Lines))
		stat(h, "time", v.Elapsed)
		h.raw(`</dl>`)
	})
}

func stat(h *htmlWriter, name, value string) {
	h.raw(`<dt>`, name, `</dt><dd class="`, name, `">`)
	h.text(value)
	h.raw(`</dd>`)
}

// Home lists the live sessions and the best results of each mode
func Home(live []model.GameView, results map[model.GameMode][]*model.GameResult) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section class="live"><h2>Live games</h2>`)
		if len(live) == 0 {
			h.raw(`<p class="empty">No games in progress</p>`)
		} else {
			h.raw(`<ul>`)
			for _, v := range live {
				h.raw(`<li><a href="/games/`, templ.EscapeString(string(v.ID)), `">`)
				h.text(string(v.ID))
				h.raw(`</a> <span class="mode">`, string(v.Mode), `</span> <span class="points">`, strconv.Itoa(v.Points), `</span></li>`)
			}
			h.raw(`</ul>`)
		}
		h.raw(`</section>`)
		for _, mode := range model.ValidModes() {
			h.render(ctx, Results(mode, results[mode]))
		}
	})
}

// Results renders a leaderboard for one mode
func Results(mode model.GameMode, results []*model.GameResult) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="results" id="results-`, string(mode), `"><h2>`, string(mode), `</h2>`)
		if len(results) == 0 {
			h.raw(`<p class="empty">No results yet</p></section>`)
			return
		}
		h.raw(`<table><thead><tr><th>#</th><th>Game</th><th>Outcome</th><th>Points</th><th>Lines</th><th>Time</th></tr></thead><tbody>`)
		for i, r := range results {
			h.raw(`<tr class="result"><td>`, strconv.Itoa(i+1), `</td><td class="id">`)
			h.text(string(r.ID))
			h.raw(`</td><td class="outcome">`, string(r.Outcome), `</td>`)
			h.raw(`<td class="points">`, strconv.Itoa(r.Points), `</td>`)
			h.raw(`<td class="lines">`, strconv.Itoa(r.Lines), `</td>`)
			h.raw(`<td class="time">`, model.FormatElapsed(r.Duration), `</td></tr>`)
		}
		h.raw(`</tbody></table></section>`)
	})
}

// MembersID is the element id of a room's member table
func MembersID(id model.RoomID) string {
	return "members-" + string(id)
}

// Room renders the members of a room and links to their sessions
func Room(r *model.RoomSummary) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="room" data-state="`, string(r.State), `">`)
		h.raw(`<p class="mode">`, string(r.Mode), `</p>`)
		if r.Winner != nil {
			h.raw(`<p class="winner">Winner: `, r.Winner.String(), `</p>`)
		}
		h.raw(`<table id="`, templ.EscapeString(MembersID(r.ID)), `"><thead><tr><th>Player</th><th>Name</th><th>Strategy</th><th>Danger</th><th>Status</th></tr></thead><tbody>`)
		for _, m := range r.Members {
			status := "alive"
			if !m.Alive {
				status = "out"
			}
			h.raw(`<tr class="member `, status, `"><td>`, m.PlayerID.String(), `</td><td class="name">`)
			if m.GameID != "" {
				h.raw(`<a href="/games/`, templ.EscapeString(string(m.GameID)), `">`)
				h.text(m.DisplayName)
				h.raw(`</a>`)
			} else {
				h.text(m.DisplayName)
			}
			h.raw(`</td><td class="strategy">`, string(m.Strategy), `</td>`)
			h.raw(`<td class="danger">`, string(m.Danger), `</td><td class="status">`, status, `</td></tr>`)
		}
		h.raw(`</tbody></table></section>`)
	})
}

// NotFound renders a short message for unknown games and rooms
func NotFound(what string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<p class="not-found">`)
		h.text(what)
		h.raw(` not found. <a href="/">Return to home</a></p>`)
	})
}
