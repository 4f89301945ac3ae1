package main

import (
	"github.com/structview/structview/lib/xmain"
	"github.com/structview/structview/svcli"
)

func main() {
	xmain.Main(svcli.Run)
}
