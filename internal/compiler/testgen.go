package compiler

import (
	"github.com/KromDaniel/symtrie/internal/codegen"
	"github.com/dave/jennifer/jen"
	"github.com/pkg/errors"
)

// generateTestFile writes a _test.go next to the matcher that feeds every
// literal through the generated function and checks the emitted value.
func (c *Compiler) generateTestFile() error {
	f := jen.NewFile(c.config.Package)
	f.HeaderComment("Code generated by symtrie. DO NOT EDIT.")

	fn := c.config.Function
	initial := c.stateIdents[Initial]

	cases := make([]jen.Code, 0, len(c.config.Mappings))
	for _, m := range c.effectiveMappings() {
		cases = append(cases, jen.Values(jen.Lit(m.Pattern), jen.Id(m.Value)))
	}

	f.Func().Id("Test"+codegen.UpperFirst(fn)+"Patterns").Params(jen.Id("t").Op("*").Qual("testing", "T")).Block(
		jen.Id("tests").Op(":=").Index().Struct(
			jen.Id("input").String(),
			jen.Id("want").Id(c.config.ValueType),
		).Values(cases...),
		jen.Line(),
		jen.For(jen.List(jen.Id("_"), jen.Id("tt")).Op(":=").Range().Id("tests")).Block(
			jen.Id("t").Dot("Run").Call(jen.Id("tt").Dot("input"), jen.Func().Params(jen.Id("t").Op("*").Qual("testing", "T")).Block(
				jen.Id("state").Op(":=").Id(initial),
				jen.Id("runes").Op(":=").Index().Rune().Call(jen.Id("tt").Dot("input")),
				jen.For(jen.List(jen.Id("i"), jen.Id("chr")).Op(":=").Range().Id("runes")).Block(
					jen.List(jen.Id("res"), jen.Id("err")).Op(":=").Id(fn).Call(jen.Id("state"), jen.Id("chr")),
					jen.If(jen.Id("err").Op("!=").Nil()).Block(
						jen.Id("t").Dot("Fatalf").Call(jen.Lit("char %d: unexpected error: %v"), jen.Id("i"), jen.Id("err")),
					),
					jen.If(jen.Op("!").Id("res").Dot(codegen.EmitField)).Block(
						jen.Id("state").Op("=").Id("res").Dot(codegen.NextField),
						jen.Continue(),
					),
					jen.If(jen.Id("i").Op("!=").Len(jen.Id("runes")).Op("-").Lit(1).Op("||").Op("!").Id("res").Dot(codegen.ConsumedField)).Block(
						jen.Id("t").Dot("Fatalf").Call(jen.Lit("char %d: early emit %+v"), jen.Id("i"), jen.Id("res")),
					),
					jen.If(jen.Op("!").Qual("reflect", "DeepEqual").Call(jen.Id("res").Dot(codegen.ValueField), jen.Id("tt").Dot("want"))).Block(
						jen.Id("t").Dot("Errorf").Call(jen.Lit("got %v, want %v"), jen.Id("res").Dot(codegen.ValueField), jen.Id("tt").Dot("want")),
					),
					jen.Return(),
				),
				jen.Line(),
				jen.Comment("The literal is also a prefix of a longer one: flush it."),
				jen.List(jen.Id("res"), jen.Id("err")).Op(":=").Id(fn).Call(jen.Id("state"), jen.Id(c.eofName())),
				jen.If(jen.Id("err").Op("!=").Nil()).Block(
					jen.Id("t").Dot("Fatalf").Call(jen.Lit("flush: unexpected error: %v"), jen.Id("err")),
				),
				jen.If(jen.Op("!").Id("res").Dot(codegen.EmitField).Op("||").Id("res").Dot(codegen.ConsumedField)).Block(
					jen.Id("t").Dot("Fatalf").Call(jen.Lit("flush: got %+v, want unconsumed emit"), jen.Id("res")),
				),
				jen.If(jen.Op("!").Qual("reflect", "DeepEqual").Call(jen.Id("res").Dot(codegen.ValueField), jen.Id("tt").Dot("want"))).Block(
					jen.Id("t").Dot("Errorf").Call(jen.Lit("got %v, want %v"), jen.Id("res").Dot(codegen.ValueField), jen.Id("tt").Dot("want")),
				),
			)),
		),
	)
	f.Line()

	f.Func().Id("Test"+codegen.UpperFirst(fn)+"AbsorbsAtInitial").Params(jen.Id("t").Op("*").Qual("testing", "T")).Block(
		jen.List(jen.Id("res"), jen.Id("err")).Op(":=").Id(fn).Call(jen.Id(initial), jen.Id(c.eofName())),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Id("t").Dot("Fatalf").Call(jen.Lit("unexpected error: %v"), jen.Id("err")),
		),
		jen.If(jen.Id("res").Dot(codegen.EmitField).Op("||").Id("res").Dot(codegen.NextField).Op("!=").Id(initial)).Block(
			jen.Id("t").Dot("Errorf").Call(jen.Lit("got %+v, want advance to %v"), jen.Id("res"), jen.Id(initial)),
		),
	)

	path := testFilePath(c.config.OutputFile)
	if err := f.Save(path); err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}
	c.logger.Wrote(path)
	return nil
}
