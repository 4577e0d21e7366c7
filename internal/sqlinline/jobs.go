package sqlinline

// QCreateOrGetJob reactivates the row on id conflict no matter its current
// status. Resubmitting a job id is the one sanctioned departure from the
// forward-only status machine: the rerun owns the row and its result
// overwrites the previous one, last write wins.
const QCreateOrGetJob = `--sql 8b2f6c1e-4d3a-4f8e-9a71-2c5e0d9b6f14
insert into generation_jobs(
  id,
  product_ref,
  storefront_ref,
  seller_ref,
  status,
  template_version,
  template_type,
  created_at,
  updated_at
) values (
  $1::text,
  $2::text,
  $3::text,
  $4::text,
  'GENERATING',
  $5::text,
  $6::text,
  now(),
  now()
)
on conflict (id) do update
  set status = 'GENERATING',
      updated_at = now()
returning id, product_ref, storefront_ref, seller_ref, status,
  content, design, image_assets, template_version, template_type,
  created_at, updated_at;
`

const QPatchJobContent = `--sql f4a9d2b7-13c8-4e6f-8d25-7b1a4c3e9052
update generation_jobs
set content = $2::jsonb,
    design = $3::jsonb,
    image_assets = $4::jsonb,
    template_version = $5::text,
    template_type = $6::text,
    status = 'READY',
    updated_at = now()
where id = $1::text
  and status = 'GENERATING';
`

// QPatchJobStatus refuses to move a job out of a terminal status; READY and
// ARCHIVED rows only change through QCreateOrGetJob reactivation.
const QPatchJobStatus = `--sql 3c7e8f21-9b4d-42a6-8e03-5d6f1a2b8c47
update generation_jobs
set status = $2::text,
    updated_at = now()
where id = $1::text
  and status in ('DRAFT', 'GENERATING');
`

const QGetJobByID = `--sql a1d5b3c9-7e2f-48a4-b6d8-0c9e4f5a2317
select id, product_ref, storefront_ref, seller_ref, status,
  content, design, image_assets, template_version, template_type,
  created_at, updated_at
from generation_jobs
where id = $1::text
limit 1;
`
