//go:build !imgpackdebug

package rect

// strict makes upscale requests panic instead of clamping.
var strict = false
