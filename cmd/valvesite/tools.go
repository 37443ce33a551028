package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/valvesite/internal/assets"
	"github.com/Faultbox/valvesite/internal/engine/scene"
	"github.com/Faultbox/valvesite/internal/site"
	"github.com/Faultbox/valvesite/pkg/glb"
)

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Print sitemap.xml for the configured base URL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog()
		if err != nil {
			return err
		}
		return site.WriteSitemap(cmd.OutOrStdout(), c, cfg.Server.BaseURL)
	},
}

var checkAssetsCmd = &cobra.Command{
	Use:   "check-assets",
	Short: "Fetch and decode every image and model the catalog references",
	Long: `Fetch and decode every image and model the catalog references.

Local references resolve under the static directory; remote ones are fetched
over HTTP at a limited rate. Exits non-zero when any asset fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog()
		if err != nil {
			return err
		}
		checker := assets.NewChecker(assets.NewFetcher(cfg.Assets), cfg.Assets)
		report, err := checker.Check(cmd.Context(), assets.References(c))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range report.Results {
			status := badgeStyle.Render("ok")
			detail := r.Detail
			if !r.OK() {
				status = errStyle.Render("FAIL")
				detail = r.Err.Error()
			}
			fmt.Fprintf(out, "%-4s %-5s %s/%s %s %s\n",
				status, r.Kind, r.Category, r.Product, slugStyle.Render(r.Ref.Ref), detail)
		}
		fmt.Fprintf(out, "\n%d checked, %d failed\n", len(report.Results), report.Failed)
		if report.Failed > 0 {
			return fmt.Errorf("%d assets failed", report.Failed)
		}
		return nil
	},
}

var inspectModelCmd = &cobra.Command{
	Use:   "inspect-model <file.glb>",
	Short: "Show the meshes, materials and bounds of a GLB model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := glb.ParseFile(args[0])
		if err != nil {
			return err
		}
		m, err := scene.FromFile(f)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		doc := f.Document
		fmt.Fprintln(out, titleStyle.Render(args[0]))
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Generator"), doc.Asset.Generator)
		fmt.Fprintf(out, "%s %d nodes, %d meshes, %d materials, %d bytes BIN\n",
			labelStyle.Render("Document"), len(doc.Nodes), len(doc.Meshes), len(doc.Materials), len(f.BIN()))
		fmt.Fprintf(out, "%s %d vertices, %d triangles\n",
			labelStyle.Render("Geometry"), m.VertexCount(), m.TriangleCount())

		b := m.Bounds()
		size := b.Size()
		fmt.Fprintf(out, "%s %.3f x %.3f x %.3f (fit scale %.3f)\n",
			labelStyle.Render("Bounds"), size.X, size.Y, size.Z, m.FitScale(scene.DefaultFitSize))

		for _, mesh := range m.Meshes {
			mat := "default"
			if mesh.Material != nil {
				mat = fmt.Sprintf("%s (%s)", mesh.Material.Name, mesh.Material.Kind)
			}
			fmt.Fprintf(out, "  %s %d triangles, %s\n", labelStyle.Render(mesh.Name), mesh.TriangleCount(), mat)
		}
		return nil
	},
}

var sampleModelCmd = &cobra.Command{
	Use:   "sample-model <out.glb>",
	Short: "Write a small valve-shaped GLB for trying the viewer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := glb.NewBuilder("valvesite sample-model")
		steel := b.AddMaterial("steel", [4]float32{0.75, 0.76, 0.78, 1}, 1, 0.4)
		handle := b.AddMaterial("handle", [4]float32{0.85, 0.1, 0.1, 1}, 0, 0.6)

		pos, idx := glb.Box([3]float32{-1, -0.4, -0.4}, [3]float32{1, 0.4, 0.4})
		b.AddMesh("body", pos, idx, steel)
		pos, idx = glb.Box([3]float32{-0.1, 0.4, -0.1}, [3]float32{0.1, 0.9, 0.1})
		b.AddMesh("stem", pos, idx, steel)
		pos, idx = glb.Box([3]float32{-0.7, 0, -0.08}, [3]float32{0.1, 0.08, 0.08})
		lever := b.AddMesh("lever", pos, idx, handle)
		b.Node(lever).Translation = [3]float64{0, 0.9, 0}

		out, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err := b.WriteTo(out); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
		return nil
	},
}
