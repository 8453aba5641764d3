package predict

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Params tunes the training run.
type Params struct {
	Window       int
	Epochs       int
	LearningRate float64
	TrainSplit   float64
}

// Scaler rescales values into [0, 1] with min-max normalisation.
type Scaler struct {
	min float64
	max float64
}

// FitScaler derives the scaling bounds from a sample.
func FitScaler(values []float64) (*Scaler, error) {
	if len(values) == 0 {
		return nil, errors.New("cannot fit scaler on empty sample")
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return nil, errors.New("cannot fit scaler on a constant sample")
	}
	return &Scaler{min: min, max: max}, nil
}

// Transform rescales values into [0, 1].
func (s *Scaler) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	span := s.max - s.min
	for i, v := range values {
		out[i] = (v - s.min) / span
	}
	return out
}

// Inverse maps a scaled value back to the original range.
func (s *Scaler) Inverse(v float64) float64 {
	return v*(s.max-s.min) + s.min
}

// MakeWindows slices a series into fixed-length input windows, each labelled
// with the observation that follows it.
func MakeWindows(values []float64, window int) (features [][]float64, targets []float64, err error) {
	if window <= 1 {
		return nil, nil, errors.New("window must be greater than one")
	}
	if len(values) <= window {
		return nil, nil, fmt.Errorf("need more than %d observations, have %d", window, len(values))
	}

	count := len(values) - window
	features = make([][]float64, count)
	targets = make([]float64, count)
	for i := 0; i < count; i++ {
		features[i] = values[i : i+window]
		targets[i] = values[i+window]
	}
	return features, targets, nil
}

// SplitTrainTest splits windows chronologically; the leading fraction trains,
// the remainder evaluates.
func SplitTrainTest(features [][]float64, targets []float64, split float64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64, err error) {
	if split <= 0 || split >= 1 {
		return nil, nil, nil, nil, errors.New("split must be between 0 and 1 exclusive")
	}
	cut := int(float64(len(features)) * split)
	if cut == 0 || cut == len(features) {
		return nil, nil, nil, nil, errors.New("split leaves an empty partition")
	}
	return features[:cut], targets[:cut], features[cut:], targets[cut:], nil
}

// Model is a linear autoregressive predictor over one input window.
type Model struct {
	weights []float64
	bias    float64
}

// Train fits the model with full-batch gradient descent on mean squared
// error. Inputs are expected to be min-max scaled.
func Train(features [][]float64, targets []float64, params Params, logger zerolog.Logger) (*Model, error) {
	if len(features) == 0 || len(features) != len(targets) {
		return nil, errors.New("features and targets must be non-empty and aligned")
	}
	if params.Epochs <= 0 || params.LearningRate <= 0 {
		return nil, errors.New("epochs and learning rate must be positive")
	}

	log := logger.With().Str("component", "predictor").Logger()
	dim := len(features[0])
	model := &Model{weights: make([]float64, dim)}

	n := float64(len(features))
	for epoch := 0; epoch < params.Epochs; epoch++ {
		grad := make([]float64, dim)
		var gradBias, loss float64

		for i, x := range features {
			residual := model.Predict(x) - targets[i]
			loss += residual * residual
			for j, xv := range x {
				grad[j] += residual * xv
			}
			gradBias += residual
		}

		for j := range model.weights {
			model.weights[j] -= params.LearningRate * 2 * grad[j] / n
		}
		model.bias -= params.LearningRate * 2 * gradBias / n

		if epoch == 0 || (epoch+1)%50 == 0 {
			log.Debug().Int("epoch", epoch+1).Float64("mse", loss/n).Msg("training progress")
		}
	}

	return model, nil
}

// Predict returns the model output for one input window.
func (m *Model) Predict(window []float64) float64 {
	out := m.bias
	for j, w := range m.weights {
		out += w * window[j]
	}
	return out
}

// RMSE evaluates the model against a held-out partition.
func (m *Model) RMSE(features [][]float64, targets []float64) float64 {
	if len(features) == 0 {
		return math.NaN()
	}
	var sum float64
	for i, x := range features {
		residual := m.Predict(x) - targets[i]
		sum += residual * residual
	}
	return math.Sqrt(sum / float64(len(features)))
}

// Result summarises one end-to-end training run.
type Result struct {
	TrainWindows int
	TestWindows  int
	TestRMSE     float64
	NextClose    float64
}

// Run trains on a close series and forecasts the next close. The RMSE is
// reported in original price units.
func Run(closes []float64, params Params, logger zerolog.Logger) (*Result, error) {
	scaler, err := FitScaler(closes)
	if err != nil {
		return nil, err
	}
	scaled := scaler.Transform(closes)

	features, targets, err := MakeWindows(scaled, params.Window)
	if err != nil {
		return nil, err
	}

	trainX, trainY, testX, testY, err := SplitTrainTest(features, targets, params.TrainSplit)
	if err != nil {
		return nil, err
	}

	model, err := Train(trainX, trainY, params, logger)
	if err != nil {
		return nil, err
	}

	lastWindow := scaled[len(scaled)-params.Window:]
	next := scaler.Inverse(model.Predict(lastWindow))

	return &Result{
		TrainWindows: len(trainX),
		TestWindows:  len(testX),
		TestRMSE:     model.RMSE(testX, testY) * (scaler.max - scaler.min),
		NextClose:    next,
	}, nil
}
