package dispatcher

import (
	"context"

	"github.com/dshills/keycalc/internal/engine"
	"github.com/dshills/keycalc/internal/engine/memory"
)

// RegisterCalculator installs handlers for every calculator action kind
// plus quit.
func (d *Dispatcher) RegisterCalculator(calc *engine.Calculator) {
	d.RegisterHandler(KindAppend, calcHandler(calc, func(a Action) error {
		return calc.Append(a.Arg)
	}))
	d.RegisterHandler(KindCalculate, calcHandler(calc, func(Action) error {
		calc.Calculate()
		return nil
	}))
	d.RegisterHandler(KindClear, calcHandler(calc, func(Action) error {
		calc.Clear()
		return nil
	}))
	d.RegisterHandler(KindBackspace, calcHandler(calc, func(Action) error {
		calc.Backspace()
		return nil
	}))
	d.RegisterHandler(KindToggleSign, calcHandler(calc, func(Action) error {
		calc.ToggleSign()
		return nil
	}))
	d.RegisterHandler(KindMemory, calcHandler(calc, func(a Action) error {
		return calc.HandleMemory(memory.Action(a.Arg))
	}))
	d.RegisterHandlerFunc(KindQuit, func(context.Context, Action) Result {
		return Quit()
	})
}

// calcHandler runs op and reports NoOp when the session state is unchanged.
func calcHandler(calc *engine.Calculator, op func(Action) error) Handler {
	return HandlerFunc(func(_ context.Context, a Action) Result {
		before := calc.State()
		if err := op(a); err != nil {
			return Error(err)
		}
		if calc.State() == before {
			return NoOp()
		}
		return OK()
	})
}
