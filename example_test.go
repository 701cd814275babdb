package zne_test

import (
	"context"
	"fmt"

	"github.com/arloliu/zne"
	"github.com/arloliu/zne/executor"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/sample"
)

func ExampleReduce() {
	samples := []sample.Sample{
		{ScaleFactor: 1, Value: 0.9},
		{ScaleFactor: 2, Value: 0.8},
		{ScaleFactor: 3, Value: 0.7},
	}

	result, err := zne.Reduce(extrapolation.Linear(), []float64{1, 2, 3}, samples)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%.4f\n", result.ZeroNoiseValue)
	// Output: 1.0000
}

func ExampleExecute() {
	// A backend whose expectation value loses 0.05 per unit of noise.
	backend := executor.ExecutorFunc(func(_ context.Context, c executor.Circuit) (float64, error) {
		sc := c.(executor.ScaledCircuit)
		return 0.95 - 0.05*sc.ScaleFactor, nil
	})

	result, err := zne.Execute(context.Background(), "ghz-3", backend,
		extrapolation.Richardson(), []float64{1, 2, 3},
		executor.WithConcurrency(3),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%s: %.4f\n", result.Model, result.ZeroNoiseValue)
	// Output: richardson: 0.9500
}

func ExampleNewRichardsonEngine() {
	engine, err := zne.NewRichardsonEngine([]float64{1, 2, 3})
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, s := range []sample.Sample{{ScaleFactor: 1, Value: 0.9}, {ScaleFactor: 2, Value: 0.8}, {ScaleFactor: 3, Value: 0.7}} {
		if err := engine.Push(s.ScaleFactor, s.Value); err != nil {
			fmt.Println(err)
			return
		}
	}

	result, err := engine.Reduce()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%.4f %s\n", result.ZeroNoiseValue, engine.State())
	// Output: 1.0000 reduced
}
