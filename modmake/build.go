package main

import (
	. "github.com/saylorsolutions/modmake"
)

const (
	fieldsealVersion = "0.1.0"
)

func main() {
	b := NewBuild()
	b.Generate().DependsOnRunner("tidy", "", Go().ModTidy())

	fieldseal := NewAppBuild("fieldseal", "cmd/fieldseal", fieldsealVersion)
	fieldseal.Build(func(gb *GoBuild) {
		gb.
			StripDebugSymbols().
			SetVariable("main", "version", fieldsealVersion).
			Env("CGO_ENABLED", "0")
	})
	fieldseal.Variant("windows", "amd64")
	fieldseal.Variant("linux", "amd64")
	fieldseal.Variant("linux", "arm64")
	fieldseal.Variant("darwin", "amd64")
	fieldseal.Variant("darwin", "arm64")
	b.ImportApp(fieldseal)

	b.Execute()
}
