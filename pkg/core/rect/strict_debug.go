//go:build imgpackdebug

package rect

var strict = true
