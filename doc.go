// Package trail renders a pointer-driven image trail on [Ebitengine].
//
// As the pointer moves across the window, a fixed pool of sprites is revealed
// one at a time along its recent path. Each reveal scales a sprite in at a
// smoothed trailing point, lets it drift in the direction of travel and fades
// it out. Sprites are recycled round-robin; the newest one always stacks on
// top.
//
// # Quick start
//
//	sources, _ := trail.LoadImageDir("images", 320)
//	sched := trail.NewTweenScheduler()
//	ctl, _ := trail.NewController(ctx, trail.NewPointer(), sched,
//		trail.NewSprites(sources), trail.DefaultConfig())
//	game := trail.NewGame(ctl, sched)
//	trail.Run(game, trail.RunConfig{Title: "Trail", Width: 1280, Height: 720})
//
// # Pieces
//
// [Pointer] holds the latest pointer position. [Controller] owns the sprite
// pool and decides when to reveal and what to animate. Animation is delegated
// to a [Scheduler]; [TweenScheduler] is the default, built on [gween]. [Game]
// is the ebiten.Game glue that polls input, ticks the controller and draws
// the pool in z-order.
//
// Everything runs on ebiten's update goroutine. Nothing in this package is
// safe for concurrent use.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package trail
