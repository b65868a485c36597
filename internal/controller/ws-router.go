package controller

import (
	"github.com/campusradio/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw())
	mux.SetErrorHandler(c.handleWSError)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)
	wsrouter.Handle(mux, "GET_STATE", c.handleGetState)

	// radio
	wsrouter.Handle(mux, "PLAY_RADIO", c.handlePlayRadio)
	wsrouter.Handle(mux, "PAUSE_RADIO", c.handlePauseRadio)
	wsrouter.Handle(mux, "RADIO_STARTED", c.handleRadioStarted)
	wsrouter.Handle(mux, "RADIO_FAILED", c.handleRadioFailed)
	wsrouter.Handle(mux, "SET_VOLUME", c.handleSetVolume)

	// podcast
	wsrouter.Handle(mux, "SELECT_EPISODE", c.handleSelectEpisode)
	wsrouter.Handle(mux, "PLAY_PODCAST", c.handlePlayPodcast)
	wsrouter.Handle(mux, "PAUSE_PODCAST", c.handlePausePodcast)
	wsrouter.Handle(mux, "SEEK", c.handleSeek)
	wsrouter.Handle(mux, "SKIP", c.handleSkip)
	wsrouter.Handle(mux, "SET_REPEAT", c.handleSetRepeat)
	wsrouter.Handle(mux, "PODCAST_PROGRESS", c.handlePodcastProgress)
	wsrouter.Handle(mux, "PODCAST_ENDED", c.handlePodcastEnded)

	return mux
}
