package sqlinline

const QGetProduct = `--sql 5e8c2a74-6b1d-4f39-9c58-3a7d0e4b1f86
select id, name, price, sale_price, coalesce(description, ''), sizes, colors,
  coalesce(image_url, ''), coalesce(category, '')
from products
where id = $1::text
limit 1;
`

const QGetStorefront = `--sql 9d4b7e3a-2c58-41f6-8a90-6e1c5d3f7b24
select id, seller_id, name, coalesce(primary_color, ''),
  coalesce(accent_color, ''), coalesce(category, '')
from storefronts
where id = $1::text
limit 1;
`
