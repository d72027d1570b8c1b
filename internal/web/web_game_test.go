package web_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/blockfall/internal/model"
)

func TestGamePageRendersBoard(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGame("VIEWGAME0001", model.ModeLines40)

	rr := ts.get("/games/VIEWGAME0001")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(t, rr.Body)
	assert.Equal(t, "Game VIEWGAME0001", doc.Find("h1").Text())

	events, ok := doc.Find("main").Attr("sse-connect")
	require.True(t, ok, "game page should follow the event stream")
	assert.Equal(t, "/games/VIEWGAME0001/events", events)

	section := doc.Find("section#game-VIEWGAME0001")
	require.Equal(t, 1, section.Length())
	status, _ := section.Attr("data-status")
	assert.Equal(t, string(model.StatusWaiting), status)

	board := doc.Find("#board-VIEWGAME0001 table.board")
	require.Equal(t, 1, board.Length())
	assert.Equal(t, 22, board.Find("tr").Length(), "field plus two buffer rows")
	assert.Equal(t, 220, board.Find("td").Length())

	assert.Equal(t, model.PreviewLength, doc.Find("ol.preview li").Length())
	assert.Equal(t, 0, doc.Find("ol.hold li").Length())
	assert.Equal(t, "lines40", doc.Find("#stats-VIEWGAME0001 dd.mode").Text())
	assert.Equal(t, "0", doc.Find("#stats-VIEWGAME0001 dd.points").Text())
}

func TestGamePageShowsLivePiece(t *testing.T) {
	ts := newWebTestServer(t)
	session := ts.createGame("LIVEPIECE001", model.ModeEndless)
	ts.app.Manager.Start(session)

	require.Eventually(t, func() bool {
		return session.View().Status == model.StatusRunning
	}, 2*time.Second, time.Millisecond)

	rr := ts.get("/games/LIVEPIECE001")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(t, rr.Body)
	assert.Equal(t, 4, doc.Find("td.cell-ghost").Length(), "ghost of the spawned piece")
	piece := doc.Find("td.cell").FilterFunction(func(_ int, cell *goquery.Selection) bool {
		return !cell.HasClass("cell-empty") && !cell.HasClass("cell-ghost")
	})
	assert.Equal(t, 4, piece.Length(), "live piece cells")
}

func TestGamePageAfterFinish(t *testing.T) {
	ts := newWebTestServer(t)
	session := ts.createGame("DONEGAME0001", model.ModeEndless)
	require.NoError(t, ts.app.Manager.Forfeit(session.ID()))
	ts.app.Manager.Start(session)

	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish")
	}

	rr := ts.get("/games/DONEGAME0001")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(t, rr.Body)
	status, _ := doc.Find("section.game").Attr("data-status")
	assert.Equal(t, string(model.StatusFinished), status)
	assert.Equal(t, string(model.OutcomeForfeited), doc.Find("dd.outcome").Text())

	result, err := ts.app.Storage.GetResult(context.Background(), "DONEGAME0001")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeForfeited, result.Outcome)
}

func TestGamePageNotFound(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/games/NOPE")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	doc := parseHTML(t, rr.Body)
	assert.Contains(t, doc.Find("p.not-found").Text(), "Game not found")
	href, _ := doc.Find("p.not-found a").Attr("href")
	assert.Equal(t, "/", href)
}
