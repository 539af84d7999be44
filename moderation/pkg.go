package moderation

import (
	"github.com/gamemod/warden/moderation/action"
	"github.com/gamemod/warden/moderation/detector"
	"github.com/gamemod/warden/moderation/engine"
	"github.com/gamemod/warden/moderation/ledger"
)

type Engine = engine.Engine
type EngineConfig = engine.Config
type Dispatcher = engine.Dispatcher
type ExemptFunc = engine.ExemptFunc
type Surface = engine.Surface

type Ledger = ledger.Ledger
type Violation = ledger.Violation

type Category = detector.Category
type Verdict = detector.Verdict

type Rule = action.Rule
type Operator = action.Operator

var (
	CategorySpam          = detector.CategorySpam
	CategoryAdvertisement = detector.CategoryAdvertisement
	CategoryCaps          = detector.CategoryCaps
	CategorySwear         = detector.CategorySwear

	SurfaceChat     = engine.SurfaceChat
	SurfaceCommand  = engine.SurfaceCommand
	SurfaceBook     = engine.SurfaceBook
	SurfaceSign     = engine.SurfaceSign
	SurfaceAnvil    = engine.SurfaceAnvil
	SurfaceItemName = engine.SurfaceItemName
)
