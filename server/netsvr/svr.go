// Package netsvr 把 http 框架（目前為 chi）藏在 NetSvr / NetRouter 之後，
// 路由註冊端只面向 NetRouter。
package netsvr

import (
	"net/http"

	"github.com/zintix-labs/cardlab/server/app"
)

// NetSvr 路由加上啟停，交給 app.App 管理生命週期；只有組裝端（server.Run）持有。
type NetSvr interface {
	NetRouter
	app.Component
}

// NetRouter 只有路由行為，看不到 Run / Shutdown。
type NetRouter interface {
	// Use 必須在註冊任何路由之前呼叫
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Put(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)

	// Group 以 path 為前綴建立子路由
	Group(path string, fn func(NetRouter))
}
