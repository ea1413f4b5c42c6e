package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualComparesBySerialOnly(t *testing.T) {
	a := Equipment{ID: 1, Serial: "EQ-100", Model: "RadarX 9000", Active: true}
	b := Equipment{ID: 2, Serial: "EQ-100", Model: "SpeedCam 2", Active: false}
	c := Equipment{ID: 1, Serial: "EQ-200", Model: "RadarX 9000", Active: true}

	assert.True(t, a.Equal(b), "same serial is the same equipment regardless of other fields")
	assert.False(t, a.Equal(c))
}

func TestMaskSerial(t *testing.T) {
	assert.Equal(t, "****0042", MaskSerial("EQ-2026-0042"))
	assert.Equal(t, "****", MaskSerial("EQ"))
}
