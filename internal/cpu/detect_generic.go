//go:build !amd64

package cpu

import "runtime"

func detectFeaturesImpl() Features {
	return Features{Architecture: runtime.GOARCH}
}
