package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Unit is a temperature scale
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

var ErrUnknownUnit = errors.New("unknown temperature unit")

// ParseUnit accepts C, F or their full names in any case
func ParseUnit(s string) (Unit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C", "CELSIUS":
		return Celsius, nil
	case "F", "FAHRENHEIT":
		return Fahrenheit, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// Conversion is the result of converting Input from one unit to the other
type Conversion struct {
	Input  float64 `json:"input"`
	From   Unit    `json:"from"`
	Output float64 `json:"output"`
	To     Unit    `json:"to"`
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// Convert converts value from the given unit to the other one, rounded to two decimals
func Convert(value float64, from Unit) Conversion {
	out := Conversion{Input: value, From: from}
	if from == Fahrenheit {
		out.To, out.Output = Celsius, FahrenheitToCelsius(value)
	} else {
		out.To, out.Output = Fahrenheit, CelsiusToFahrenheit(value)
	}
	out.Output = math.Round(out.Output*100) / 100
	return out
}
