package dxvk

import (
	"fmt"
	"log/slog"
)

// TiledCoordinate addresses a tile of a tiled resource.
type TiledCoordinate struct {
	X, Y, Z     uint32
	Subresource uint32
}

// TileRegionSize is the extent of a tile region. With UseBox the region is
// Width x Height x Depth tiles, otherwise NumTiles tiles in linear order.
type TileRegionSize struct {
	NumTiles uint32
	UseBox   bool
	Width    uint32
	Height   uint16
	Depth    uint16
}

// TileRangeFlags modify a tile range mapping.
type TileRangeFlags uint32

// Tile range flags.
const (
	TileRangeNull TileRangeFlags = 1 << iota
	TileRangeSkip
	TileRangeReuseSingleTile
)

// TileRange maps a run of tiles to consecutive tiles of the pool.
type TileRange struct {
	Flags     TileRangeFlags
	PoolStart uint32
	Count     uint32
}

// TileManager owns tile pools and tiled-resource page tables. It is an
// external collaborator: a Device without one rejects tile operations with
// ErrTilesNotSupported.
type TileManager interface {
	ResizeTilePool(pool *Buffer, size uint64) error
	UpdateTileMappings(tiled Resource, coords []TiledCoordinate, sizes []TileRegionSize, pool *Buffer, ranges []TileRange) error
	CopyTileMappings(dst Resource, dstCoord TiledCoordinate, src Resource, srcCoord TiledCoordinate, size TileRegionSize) error
	CopyTiles(tiled Resource, coord TiledCoordinate, size TileRegionSize, buf *Buffer, offset uint64, toBuffer bool) error
	UpdateTiles(tiled Resource, coord TiledCoordinate, size TileRegionSize, data []byte) error
	TiledResourceBarrier(before, after Object)
}

// Tile operations go straight to the device's TileManager. They change
// resource memory, not context state, so deferred contexts do not record
// them.

// ResizeTilePool grows or shrinks a tile pool buffer.
func (c *commonContext[F]) ResizeTilePool(pool *Buffer, size uint64) error {
	tm, err := c.tileManager()
	if err != nil {
		return err
	}
	if err := tm.ResizeTilePool(pool, size); err != nil {
		return c.tileError("resize tile pool", err)
	}
	return nil
}

// UpdateTileMappings maps tile regions of a tiled resource into a pool.
func (c *commonContext[F]) UpdateTileMappings(tiled Resource, coords []TiledCoordinate, sizes []TileRegionSize, pool *Buffer, ranges []TileRange) error {
	tm, err := c.tileManager()
	if err != nil {
		return err
	}
	if err := tm.UpdateTileMappings(tiled, coords, sizes, pool, ranges); err != nil {
		return c.tileError("update tile mappings", err)
	}
	return nil
}

// CopyTileMappings copies tile mappings between tiled resources.
func (c *commonContext[F]) CopyTileMappings(dst Resource, dstCoord TiledCoordinate, src Resource, srcCoord TiledCoordinate, size TileRegionSize) error {
	tm, err := c.tileManager()
	if err != nil {
		return err
	}
	if err := tm.CopyTileMappings(dst, dstCoord, src, srcCoord, size); err != nil {
		return c.tileError("copy tile mappings", err)
	}
	return nil
}

// CopyTiles copies tile data between a tiled resource and a buffer.
func (c *commonContext[F]) CopyTiles(tiled Resource, coord TiledCoordinate, size TileRegionSize, buf *Buffer, offset uint64, toBuffer bool) error {
	tm, err := c.tileManager()
	if err != nil {
		return err
	}
	if err := tm.CopyTiles(tiled, coord, size, buf, offset, toBuffer); err != nil {
		return c.tileError("copy tiles", err)
	}
	return nil
}

// UpdateTiles uploads tile data to a tiled resource.
func (c *commonContext[F]) UpdateTiles(tiled Resource, coord TiledCoordinate, size TileRegionSize, data []byte) error {
	tm, err := c.tileManager()
	if err != nil {
		return err
	}
	if err := tm.UpdateTiles(tiled, coord, size, data); err != nil {
		return c.tileError("update tiles", err)
	}
	return nil
}

// TiledResourceBarrier orders accesses to resources sharing tiles. It is a
// no-op without a TileManager.
func (c *commonContext[F]) TiledResourceBarrier(before, after Object) {
	if tm, err := c.tileManager(); err == nil {
		tm.TiledResourceBarrier(before, after)
	}
}

func (c *commonContext[F]) tileManager() (TileManager, error) {
	if c.device == nil || c.device.tiles == nil {
		return nil, ErrTilesNotSupported
	}
	return c.device.tiles, nil
}

func (c *commonContext[F]) tileError(op string, err error) error {
	Logger().Warn("dxvk: tile operation failed", slog.String("op", op), slog.String("err", err.Error()))
	return fmt.Errorf("dxvk: %s: %w", op, err)
}
