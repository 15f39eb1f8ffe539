package main

import (
	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/response"
)

func (api *API) toggleSubscription(c *gin.Context) {
	state, err := api.subscriptions.Toggle(c.Request.Context(), viewer(c), c.Param("channelId"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	message := "Unsubscribed successfully"
	if state.IsSubscribed {
		message = "Subscribed successfully"
	}
	response.OK(c, state, message)
}

func (api *API) channelSubscribers(c *gin.Context) {
	p, limit, ok := page(c, defaultPageLimit)
	if !ok {
		return
	}

	subscribers, err := api.subscriptions.Subscribers(c.Request.Context(), c.Param("channelId"), p, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, subscribers, "Subscribers fetched successfully")
}

func (api *API) subscribedChannels(c *gin.Context) {
	p, limit, ok := page(c, defaultPageLimit)
	if !ok {
		return
	}

	channels, err := api.subscriptions.SubscribedChannels(c.Request.Context(), c.Param("subscriberId"), p, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, channels, "Subscribed channels fetched successfully")
}

func (api *API) createTweet(c *gin.Context) {
	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}

	tweet, err := api.tweets.Create(c.Request.Context(), viewer(c), req.Content)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, tweet, "Tweet created successfully")
}

func (api *API) userTweets(c *gin.Context) {
	p, limit, ok := page(c, defaultPageLimit)
	if !ok {
		return
	}

	tweets, err := api.tweets.ListByUser(c.Request.Context(), c.Param("userId"), viewer(c), p, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, tweets, "Tweets fetched successfully")
}

func (api *API) updateTweet(c *gin.Context) {
	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}

	tweet, err := api.tweets.Update(c.Request.Context(), viewer(c), c.Param("tweetId"), req.Content)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, tweet, "Tweet updated successfully")
}

func (api *API) deleteTweet(c *gin.Context) {
	if err := api.tweets.Delete(c.Request.Context(), viewer(c), c.Param("tweetId")); err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{}, "Tweet deleted successfully")
}

func (api *API) channelStats(c *gin.Context) {
	stats, err := api.dashboard.Stats(c.Request.Context(), viewer(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, stats, "Channel stats fetched successfully")
}

func (api *API) channelVideos(c *gin.Context) {
	p, limit, ok := page(c, channelVideosLimit)
	if !ok {
		return
	}

	videos, err := api.dashboard.Videos(c.Request.Context(), viewer(c), p, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, videos, "Channel videos fetched successfully")
}
