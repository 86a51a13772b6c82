package core

import "time"

// Report summarizes one build of the site.
type Report struct {
	OutputDir  string
	Pages      int
	Posts      int
	Tags       int
	IndexPages int
	Images     int // files copied from the images directory
	Variants   int // resized copies written
	Static     int // static and plugin asset files copied
	Warnings   []string
	Duration   time.Duration
}

// Warn records a recoverable problem that did not stop the build.
func (r *Report) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
